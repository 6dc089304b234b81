// Package cli wires the terminal lyrics client: configuration, local
// storage, the session and its commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"lyrify/internal/client"
	"lyrify/internal/clipboard"
	"lyrify/internal/config"
	"lyrify/internal/database"
	"lyrify/internal/history"
	"lyrify/internal/imageload"

	"github.com/sirupsen/logrus"
)

// CLI handles command execution
type CLI struct {
	cfg     *config.Config
	logger  *logrus.Logger
	db      *database.Database
	session *client.Session
	view    *client.TerminalView
	in      *bufio.Reader
	out     io.Writer
}

// autoConfirm answers every confirmation with yes.
type autoConfirm struct {
	client.View
}

func (autoConfirm) Confirm(string) bool { return true }

// New loads configuration and builds a session for args.
func New(args *Args, in io.Reader, out io.Writer) (*CLI, error) {
	cfg, err := loadConfig(args)
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	if args.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else if logger.GetLevel() > logrus.WarnLevel {
		logger.SetLevel(logrus.WarnLevel)
	}

	db, err := database.NewDatabase(cfg.Client.HistoryPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	h, err := history.Load(db, cfg.Client.HistoryLimit, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	proxy, err := client.NewProxyClient(cfg.Client.ServerURL, &http.Client{})
	if err != nil {
		db.Close()
		return nil, err
	}

	reader := bufio.NewReader(in)
	view := client.NewTerminalView(out, reader)

	var sessionView client.View = view
	if args.Clear != nil && args.Clear.Yes {
		sessionView = autoConfirm{View: view}
	}

	resolver := imageload.NewResolver(imageload.Options{
		ProxyURL: cfg.Images.ProxyURL,
		Width:    cfg.Images.Width,
		Height:   cfg.Images.Height,
		Fit:      cfg.Images.Fit,
		Timeout:  cfg.ImageTimeout(),
	}, logger)

	session, err := client.NewSession(client.Options{
		Lyrics:            proxy,
		Images:            resolver,
		Clipboard:         clipboard.NewSystemCopier(logger),
		View:              sessionView,
		History:           h,
		NotificationDelay: cfg.NotificationDelay(),
		Logger:            logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CLI{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		session: session,
		view:    view,
		in:      reader,
		out:     out,
	}, nil
}

// loadConfig reads the config file when it exists. Unlike the server, the
// client never writes a default file.
func loadConfig(args *Args) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if _, err := os.Stat(args.Config); err == nil {
		cfg, err = config.ReadFile(args.Config)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(".env"); err != nil {
		return nil, err
	}
	if args.Server != "" {
		cfg.Client.ServerURL = args.Server
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the selected command; no subcommand starts the shell.
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	switch {
	case args.Search != nil:
		if err := c.session.Search(ctx, args.Search.QueryString()); err != nil {
			return err
		}
		if args.Search.Copy {
			return c.session.CopyLyrics(ctx)
		}
		return nil
	case args.History != nil:
		if args.History.Index != nil {
			return c.session.SearchFromHistory(ctx, *args.History.Index-1)
		}
		c.session.LoadHistory()
		return nil
	case args.Clear != nil:
		_, err := c.session.ClearHistory()
		return err
	default:
		return c.RunShell(ctx)
	}
}

// Close releases the session and the history store.
func (c *CLI) Close() error {
	c.session.Close()
	return c.db.Close()
}
