package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCommand is returned for input that names no command
var ErrUnknownCommand = errors.New("unknown command")

type verb int

const (
	verbNone verb = iota
	verbNext
	verbPrev
	verbPage
	verbLike
	verbFlag
	verbWrite
	verbAlias
	verbPost
	verbRefresh
	verbClose
	verbHelp
	verbQuit
)

var verbs = map[string]verb{
	"next":    verbNext,
	"n":       verbNext,
	"prev":    verbPrev,
	"p":       verbPrev,
	"page":    verbPage,
	"like":    verbLike,
	"l":       verbLike,
	"flag":    verbFlag,
	"f":       verbFlag,
	"write":   verbWrite,
	"alias":   verbAlias,
	"post":    verbPost,
	"refresh": verbRefresh,
	"r":       verbRefresh,
	"close":   verbClose,
	"help":    verbHelp,
	"h":       verbHelp,
	"quit":    verbQuit,
	"q":       verbQuit,
	"exit":    verbQuit,
}

// command is one parsed input line
type command struct {
	verb verb
	// text is the raw remainder for write, alias and post
	text string
	// n is the numeric argument for page, like and flag
	n int
}

// parseCommand parses one input line. Blank input yields verbNone.
func parseCommand(line string) (command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return command{verb: verbNone}, nil
	}

	word, rest, _ := strings.Cut(trimmed, " ")
	v, ok := verbs[strings.ToLower(word)]
	if !ok {
		return command{}, fmt.Errorf("%w %q", ErrUnknownCommand, word)
	}
	cmd := command{verb: v}

	switch v {
	case verbPage, verbLike, verbFlag:
		arg := strings.TrimSpace(rest)
		if arg == "" {
			return command{}, fmt.Errorf("%s needs a number", word)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return command{}, fmt.Errorf("%s needs a positive number, got %q", word, arg)
		}
		cmd.n = n
	case verbWrite, verbPost:
		// content is kept verbatim apart from the separating space
		cmd.text = rest
	case verbAlias:
		cmd.text = strings.TrimSpace(rest)
	}
	return cmd, nil
}
