package view

import (
	"strings"
	"time"
	"unicode/utf16"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"WhisperWall/internal/core/posts"
)

// avatarPalette is indexed by AvatarColor
var avatarPalette = []color.Attribute{
	color.FgHiBlue,
	color.FgHiMagenta,
	color.FgHiCyan,
	color.FgHiGreen,
	color.FgHiYellow,
	color.FgHiWhite,
}

// naive ISO layouts the service emits without a zone; read as UTC
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

var printer = message.NewPrinter(language.English)

// TimeAgo renders createdAt relative to now. Empty or unparseable values
// render as "Recently"; timestamps in the future render as "just now".
func TimeAgo(createdAt string, now time.Time) string {
	t, ok := parseTimestamp(createdAt)
	if !ok {
		return "Recently"
	}

	seconds := int64(now.Sub(t) / time.Second)
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return printer.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return printer.Sprintf("%dh ago", seconds/3600)
	case seconds < 604800:
		return printer.Sprintf("%dd ago", seconds/86400)
	}

	local := t.In(now.Location())
	if local.Year() != now.Year() {
		return local.Format("Jan 2, 2006")
	}
	return local.Format("Jan 2")
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AvatarColor picks the palette index for an alias. The hash is the sum of
// the alias's UTF-16 code units, so the same alias always gets the same color.
func AvatarColor(alias string) int {
	sum := 0
	for _, u := range utf16.Encode([]rune(DisplayAlias(alias))) {
		sum += int(u)
	}
	return sum % len(avatarPalette)
}

// Initials returns the avatar text: "?" for anonymous posts, otherwise the
// first character of the alias, uppercased.
func Initials(alias string) string {
	if DisplayAlias(alias) == posts.DefaultAlias {
		return "?"
	}
	first, _, _, _ := uniseg.FirstGraphemeClusterInString(alias, -1)
	// a Caser keeps state between calls
	return cases.Upper(language.Und).String(first)
}

// DisplayAlias returns the name shown for a post author, following Post.Alias
func DisplayAlias(alias string) string {
	return posts.Post{AuthorAlias: alias}.Alias()
}

// FormatCount renders n with thousands separators
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}
