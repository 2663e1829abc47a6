// Package view renders the feed, its cards, the pagination control, the
// composer and notifications as terminal text.
package view

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"

	"WhisperWall/internal/core/toast"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer holds the parsed templates for the terminal interface.
type Renderer struct {
	templates *template.Template
	clock     clock.Clock
	color     bool
}

// Option configures a Renderer
type Option func(*Renderer)

// WithClock sets the clock used for relative timestamps
func WithClock(clk clock.Clock) Option {
	return func(r *Renderer) {
		if clk != nil {
			r.clock = clk
		}
	}
}

// WithColor enables or disables ANSI styling
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// NewRenderer parses all embedded templates. Color is off unless enabled.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{clock: clock.New()}
	for _, opt := range opts {
		opt(r)
	}

	tmpl, err := template.New("view").Funcs(r.funcs()).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.templates = tmpl
	return r, nil
}

// Render renders a named template with the provided data.
// Returns an error if the template doesn't exist or rendering fails.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl := r.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}
	return nil
}

// Shell renders the whole screen
func (r *Renderer) Shell(w io.Writer, data ShellData) error {
	return r.Render(w, "shell", data)
}

// Help renders the command reference
func (r *Renderer) Help(w io.Writer) error {
	return r.Render(w, "help", nil)
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"bold":  r.styler(color.Bold),
		"dim":   r.styler(color.Faint),
		"red":   r.styler(color.FgRed),
		"cyan":  r.styler(color.FgCyan),
		"alias": DisplayAlias,
		"count": FormatCount,
		"timeAgo": func(createdAt string) string {
			return TimeAgo(createdAt, r.clock.Now())
		},
		"avatar": func(alias string) string {
			c := r.style(avatarPalette[AvatarColor(alias)], color.Bold)
			return c.Sprintf("(%s)", Initials(alias))
		},
		"indent": func(s string) string {
			return strings.ReplaceAll(s, "\n", "\n    ")
		},
		"toast": func(kind toast.Kind, s string) string {
			return r.style(toastColor(kind)).Sprint(s)
		},
		"toastIcon": toastIcon,
	}
}

func (r *Renderer) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (r *Renderer) styler(attrs ...color.Attribute) func(string) string {
	return func(s string) string {
		return r.style(attrs...).Sprint(s)
	}
}

func toastColor(kind toast.Kind) color.Attribute {
	switch kind {
	case toast.KindSuccess:
		return color.FgGreen
	case toast.KindError:
		return color.FgRed
	default:
		return color.FgBlue
	}
}

func toastIcon(kind toast.Kind) string {
	switch kind {
	case toast.KindSuccess:
		return "✅"
	case toast.KindError:
		return "❌"
	default:
		return "ℹ️"
	}
}
