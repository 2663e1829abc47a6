package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"WhisperWall/internal/config"
	"WhisperWall/internal/core/compose"
	"WhisperWall/internal/core/feed"
	"WhisperWall/internal/core/posts"
	"WhisperWall/internal/core/toast"
	"WhisperWall/internal/tui"
	"WhisperWall/internal/view"
	"WhisperWall/internal/wallapi"
)

// newApp builds the command line interface over the given streams
func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "whisperwall",
		Usage:     "Share your thoughts anonymously",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file (default $" + config.EnvConfigFile + ")"},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file read before the environment"},
			&cli.StringFlag{Name: "api-url", Usage: "service base URL, e.g. http://localhost:8000/api/v1"},
			&cli.IntFlag{Name: "page-size", Usage: "whispers per page"},
			&cli.IntFlag{Name: "max-length", Usage: "composer character ceiling"},
			&cli.StringFlag{Name: "title", Usage: "header title"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
			&cli.StringFlag{Name: "log-file", Usage: "log destination in interactive mode"},
			&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
		},
		Action: browse,
		Commands: []*cli.Command{
			{
				Name:   "browse",
				Usage:  "open the interactive wall (default)",
				Action: browse,
			},
			{
				Name:  "list",
				Usage: "print one page of whispers",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1, Usage: "page number"},
				},
				Action: list,
			},
			{
				Name:      "post",
				Usage:     "share a whisper",
				ArgsUsage: "TEXT...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "alias", Usage: "display name (defaults to Anonymous)"},
				},
				Action: post,
			},
			{
				Name:      "like",
				Usage:     "like a whisper",
				ArgsUsage: "ID",
				Action:    like,
			},
			{
				Name:      "flag",
				Usage:     "flag a whisper for moderation",
				ArgsUsage: "ID",
				Action:    flag,
			},
		},
	}
}

// env bundles the resolved configuration and the collaborators built from it
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	client   *wallapi.Client
	renderer *view.Renderer
	closers  []io.Closer
}

func (e *env) Close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
}

// resolveConfig layers command line flags over the loaded configuration
func resolveConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("api-url") {
		cfg.APIBaseURL = c.String("api-url")
	}
	if c.IsSet("page-size") {
		cfg.PostsPerPage = c.Int("page-size")
	}
	if c.IsSet("max-length") {
		cfg.MaxPostLength = c.Int("max-length")
	}
	if c.IsSet("title") {
		cfg.AppTitle = c.String("title")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.Bool("no-color") {
		cfg.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup resolves configuration and builds the logger, client and renderer.
// Interactive mode keeps logs off the screen.
func setup(c *cli.Context, interactive bool) (*env, error) {
	cfg, err := resolveConfig(c)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	level, _ := cfg.SlogLevel()
	logOut := c.App.ErrWriter
	if interactive {
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			logOut = f
			e.closers = append(e.closers, f)
		} else if level < slog.LevelError {
			level = slog.LevelError
		}
	}
	e.logger = newLogger(logOut, cfg.LogFormat, level)

	e.client, err = wallapi.NewClient(cfg.APIBaseURL,
		wallapi.WithLogger(e.logger),
		wallapi.WithPageSize(cfg.PostsPerPage),
	)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.renderer, err = view.NewRenderer(view.WithColor(colorEnabled(c.App.Writer, cfg.NoColor)))
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func colorEnabled(w io.Writer, noColor bool) bool {
	return !noColor && isTerminal(w)
}

func browse(c *cli.Context) error {
	e, err := setup(c, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := feed.New(e.client,
		feed.WithNotifier(toast.NewNotifier(nil, toast.DefaultTTL)),
		feed.WithLogger(e.logger),
		feed.WithPageSize(e.cfg.PostsPerPage),
	)
	form := compose.NewForm(e.cfg.MaxPostLength)

	e.logger.Info("starting interactive wall", "api", e.client.BaseURL())
	app := tui.New(f, form, e.renderer, c.App.Reader, c.App.Writer,
		tui.WithTitle(e.cfg.AppTitle),
		tui.WithLogger(e.logger),
		tui.WithClearScreen(isTerminal(c.App.Writer)),
	)
	return app.Run(ctx)
}

func list(c *cli.Context) error {
	e, err := setup(c, false)
	if err != nil {
		return err
	}
	defer e.Close()

	page, err := e.client.ListPosts(c.Context, c.Int("page"), e.cfg.PostsPerPage)
	if err != nil {
		return errors.New(posts.Message(err, feed.MsgLoadFailed))
	}

	out := c.App.Writer
	if len(page.Posts) == 0 {
		fmt.Fprintln(out, "No whispers yet")
		return nil
	}
	for i, p := range page.Posts {
		if err := e.renderer.Render(out, "card", view.Card{Post: p, Position: i + 1}); err != nil {
			return err
		}
	}
	pag := view.Pagination{Current: c.Int("page"), Total: page.Pages, HasPrev: page.HasPrev, HasNext: page.HasNext}
	if err := e.renderer.Render(out, "pagination", pag); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s whispers\n", view.FormatCount(page.Total))
	return nil
}

func post(c *cli.Context) error {
	e, err := setup(c, false)
	if err != nil {
		return err
	}
	defer e.Close()

	form := compose.NewForm(e.cfg.MaxPostLength)
	form.SetContent(strings.Join(c.Args().Slice(), " "))
	form.SetAlias(c.String("alias"))

	var created *posts.Post
	err = form.Submit(c.Context, func(ctx context.Context, content, alias string) error {
		p, err := e.client.CreatePost(ctx, content, alias)
		created = p
		return err
	})
	if err != nil {
		return errors.New(form.Snapshot().Error)
	}

	fmt.Fprintf(c.App.Writer, "%s (id %s)\n", feed.MsgCreated, created.ID)
	return nil
}

func like(c *cli.Context) error {
	id, err := postIDArg(c)
	if err != nil {
		return err
	}
	e, err := setup(c, false)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.client.LikePost(c.Context, id)
	if err != nil {
		return errors.New(posts.Message(err, feed.MsgLikeFailed))
	}
	fmt.Fprintf(c.App.Writer, "Liked whisper %s (%d likes)\n", p.ID, p.Likes)
	return nil
}

func flag(c *cli.Context) error {
	id, err := postIDArg(c)
	if err != nil {
		return err
	}
	e, err := setup(c, false)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.client.FlagPost(c.Context, id); err != nil {
		return errors.New(posts.Message(err, feed.MsgFlagFailed))
	}
	fmt.Fprintln(c.App.Writer, feed.MsgFlagged)
	return nil
}

func postIDArg(c *cli.Context) (posts.PostID, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s needs exactly one whisper ID", c.Command.Name)
	}
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", fmt.Errorf("%s needs a whisper ID", c.Command.Name)
	}
	return posts.PostID(id), nil
}
