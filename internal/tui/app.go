// Package tui runs the interactive WhisperWall shell: it reads commands line
// by line, dispatches feed actions in the background and redraws the screen
// whenever the feed, a toast or the composer changes.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"WhisperWall/internal/core/compose"
	"WhisperWall/internal/core/feed"
	"WhisperWall/internal/view"
)

const clearScreen = "\x1b[H\x1b[2J"

// App is the interactive shell
type App struct {
	feed     *feed.Feed
	actions  *feed.Actions
	form     *compose.Form
	renderer *view.Renderer
	in       io.Reader
	out      io.Writer
	logger   *slog.Logger
	title    string
	clear    bool
	wg       sync.WaitGroup
	outMu    sync.Mutex
}

// Option configures an App
type Option func(*App)

// WithTitle sets the header title
func WithTitle(title string) Option {
	return func(a *App) {
		if title != "" {
			a.title = title
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClearScreen clears the terminal before every redraw
func WithClearScreen(enabled bool) Option {
	return func(a *App) {
		a.clear = enabled
	}
}

// New creates a shell over a feed and a composer
func New(f *feed.Feed, form *compose.Form, renderer *view.Renderer, in io.Reader, out io.Writer, opts ...Option) *App {
	a := &App{
		feed:     f,
		actions:  feed.NewActions(f),
		form:     form,
		renderer: renderer,
		in:       in,
		out:      out,
		logger:   slog.Default(),
		title:    "WhisperWall",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run loads the first page and processes commands until quit, end of input
// or ctx is done. Outstanding actions finish before Run returns.
func (a *App) Run(ctx context.Context) error {
	a.feed.Subscribe(a.render)
	a.render()
	a.spawn(func() {
		_ = a.feed.Start(ctx)
	})

	done := make(chan struct{})
	defer close(done)
	lines := a.readLines(done)

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("shell interrupted", "reason", ctx.Err())
			break loop
		case in, ok := <-lines:
			if !ok {
				break loop
			}
			if in.err != nil {
				err = fmt.Errorf("read input: %w", in.err)
				break loop
			}
			if quit := a.handle(ctx, in.line); quit {
				break loop
			}
		}
	}

	a.wg.Wait()
	return err
}

type input struct {
	line string
	err  error
}

// readLines delivers input lines of any length until end of input or done.
// A read error other than io.EOF is delivered once before the channel closes.
func (a *App) readLines(done <-chan struct{}) <-chan input {
	lines := make(chan input)
	go func() {
		defer close(lines)
		send := func(in input) bool {
			select {
			case lines <- in:
				return true
			case <-done:
				return false
			}
		}

		r := bufio.NewReader(a.in)
		for {
			text, err := r.ReadString('\n')
			if text != "" && !send(input{line: strings.TrimRight(text, "\r\n")}) {
				return
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					send(input{err: err})
				}
				return
			}
		}
	}()
	return lines
}

// handle executes one input line and reports whether the shell should exit
func (a *App) handle(ctx context.Context, line string) bool {
	cmd, err := parseCommand(line)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			a.noticef("%v. Type help for commands.", err)
		} else {
			a.noticef("%v", err)
		}
		return false
	}

	switch cmd.verb {
	case verbNone:
		a.render()
	case verbQuit:
		return true
	case verbHelp:
		a.help()
	case verbNext:
		a.next(ctx)
	case verbPrev:
		a.prev(ctx)
	case verbPage:
		a.page(ctx, cmd.n)
	case verbLike:
		a.like(ctx, cmd.n)
	case verbFlag:
		a.flag(ctx, cmd.n)
	case verbWrite:
		a.write(cmd.text)
	case verbAlias:
		a.alias(cmd.text)
	case verbPost:
		a.post(ctx, cmd.text)
	case verbRefresh:
		a.spawn(func() { _ = a.feed.Refresh(ctx) })
	case verbClose:
		a.closeToast()
	}
	return false
}

func (a *App) pagination() view.Pagination {
	s := a.feed.State()
	return view.Pagination{
		Current: s.CurrentPage,
		Total:   s.TotalPages,
		HasPrev: s.HasPrev,
		HasNext: s.HasNext,
	}
}

func (a *App) next(ctx context.Context) {
	n, ok := a.pagination().Next()
	if !ok {
		a.noticef("There is no next page.")
		return
	}
	a.spawn(func() { _ = a.feed.ChangePage(ctx, n) })
}

func (a *App) prev(ctx context.Context) {
	n, ok := a.pagination().Prev()
	if !ok {
		a.noticef("There is no previous page.")
		return
	}
	a.spawn(func() { _ = a.feed.ChangePage(ctx, n) })
}

func (a *App) page(ctx context.Context, n int) {
	if total := a.pagination().DisplayTotal(); n > total {
		a.noticef("Page %d does not exist; there are %d.", n, total)
		return
	}
	a.spawn(func() { _ = a.feed.ChangePage(ctx, n) })
}

func (a *App) like(ctx context.Context, position int) {
	p, ok := a.feed.State().At(position)
	if !ok {
		a.noticef("No whisper at position %d on this page.", position)
		return
	}
	if a.actions.Busy(p.ID).Liking {
		a.noticef("Already liking whisper %d.", position)
		return
	}
	a.spawn(func() {
		if err := a.actions.Like(ctx, p.ID); err != nil {
			a.logger.Debug("like not completed", "post_id", p.ID, "error", err)
		}
	})
}

func (a *App) flag(ctx context.Context, position int) {
	p, ok := a.feed.State().At(position)
	if !ok {
		a.noticef("No whisper at position %d on this page.", position)
		return
	}
	if p.IsFlagged {
		a.noticef("Whisper %d is already flagged.", position)
		return
	}
	if a.actions.Busy(p.ID).Flagging {
		a.noticef("Already flagging whisper %d.", position)
		return
	}
	a.spawn(func() {
		if err := a.actions.Flag(ctx, p.ID); err != nil {
			a.logger.Debug("flag not completed", "post_id", p.ID, "error", err)
		}
	})
}

func (a *App) write(text string) {
	if a.form.Snapshot().Submitting {
		a.noticef("Still posting, please wait.")
		return
	}
	a.form.SetContent(text)
	a.render()
}

func (a *App) alias(name string) {
	if a.form.Snapshot().Submitting {
		a.noticef("Still posting, please wait.")
		return
	}
	a.form.SetAlias(name)
	a.render()
}

func (a *App) post(ctx context.Context, text string) {
	if a.form.Snapshot().Submitting {
		a.noticef("Still posting, please wait.")
		return
	}
	if text != "" {
		a.form.SetContent(text)
	}
	a.spawn(func() {
		if err := a.form.Submit(ctx, a.feed.CreatePost); err != nil {
			a.logger.Debug("post not submitted", "error", err)
		}
		a.render()
	})
}

func (a *App) closeToast() {
	t := a.feed.State().Toast
	if t == nil {
		a.noticef("No notification to close.")
		return
	}
	a.feed.Notifier().Dismiss(t.ID)
}

// spawn runs fn in the background and tracks it for shutdown
func (a *App) spawn(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// render redraws the screen from the current feed and form state
func (a *App) render() {
	snap := a.form.Snapshot()
	data := view.NewShellData(a.title, a.feed.State(), a.actions.Busy, &snap)

	a.outMu.Lock()
	defer a.outMu.Unlock()
	if a.clear {
		fmt.Fprint(a.out, clearScreen)
	}
	if err := a.renderer.Shell(a.out, data); err != nil {
		a.logger.Error("failed to render screen", "error", err)
		return
	}
	fmt.Fprint(a.out, "> ")
}

func (a *App) help() {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	if err := a.renderer.Help(a.out); err != nil {
		a.logger.Error("failed to render help", "error", err)
	}
	fmt.Fprint(a.out, "> ")
}

func (a *App) noticef(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format+"\n> ", args...)
}
