package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pixelsheets/gridsync/collab"
	"github.com/pixelsheets/gridsync/editor"
	"github.com/pixelsheets/gridsync/formula"
	"github.com/pixelsheets/gridsync/grid"
	"github.com/pixelsheets/gridsync/store"
)

type options struct {
	relayURL      string
	apiURL        string
	apiToken      string
	dbPath        string
	csvPath       string
	logPath       string
	userID        int
	username      string
	spreadsheetID int
	sheetID       int
}

func main() {
	var opts options
	root := &cobra.Command{
		Use:   "gridsync-demo",
		Short: "Terminal spreadsheet client with live collaboration",
		Long: `gridsync-demo opens one sheet in a terminal UI.

With --relay it joins the sheet's room and syncs edits, cursors and
presence with everyone connected to the same relay. Without it the sheet
is local only.

Cells persist to --db (SQLite) or to the --api cell service; with
neither, an in-memory demo sheet is loaded.

Keys: arrows/tab/enter move, F2 or typing edits, esc cancels,
ctrl+c/x/v copy/cut/paste, ctrl+a selects all, ctrl+q quits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	fs := root.Flags()
	fs.StringVar(&opts.relayURL, "relay", "", "websocket room relay, e.g. ws://localhost:8811/ws (empty: offline)")
	fs.StringVar(&opts.apiURL, "api", "", "cell service base URL (empty: local store)")
	fs.StringVar(&opts.apiToken, "token", "", "bearer token for the cell service")
	fs.StringVar(&opts.dbPath, "db", "", "SQLite file for local persistence")
	fs.StringVar(&opts.csvPath, "csv", "", "write a CSV snapshot of the sheet on exit")
	fs.StringVar(&opts.logPath, "log", "", "append logs to this file (the terminal belongs to the UI)")
	fs.IntVar(&opts.userID, "user", 1, "numeric user id")
	fs.StringVar(&opts.username, "name", "anonymous", "display name")
	fs.IntVar(&opts.spreadsheetID, "spreadsheet", 1, "spreadsheet id")
	fs.IntVar(&opts.sheetID, "sheet", 1, "sheet id")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	logger, err := newLogger(opts.logPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	g := grid.New(grid.Options{})

	st, closeStore, err := openStore(opts, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Hydrate from storage. An unreachable backend starts the sheet empty
	// rather than refusing to run.
	if cells, err := st.ReadCells(ctx, opts.sheetID); err != nil {
		logger.Warn("loading sheet failed, starting empty", zap.Error(err))
	} else {
		g.Load(cells)
	}

	eval := formula.New(g)

	// The channel callbacks close over p; they cannot fire before Start,
	// and p is assigned before that.
	var (
		p  *tea.Program
		ch *collab.Channel
	)
	if opts.relayURL != "" {
		tr := collab.NewWSTransport(opts.relayURL, collab.WithWSLogger(logger))
		ch = collab.New(
			collab.Config{
				SpreadsheetID: opts.spreadsheetID,
				SheetID:       opts.sheetID,
				User:          collab.User{ID: opts.userID, Username: opts.username},
			},
			g, tr,
			collab.WithLogger(logger),
			collab.WithStore(st),
			collab.WithOnState(func(s collab.ConnState) { p.Send(stateMsg(s)) }),
			collab.WithOnNotice(func(n string) { p.Send(noticeMsg(n)) }),
			collab.WithOnRefresh(func() { p.Send(refreshMsg{}) }),
		)
	}

	cfg := editor.Config{
		Style:     editor.DefaultStyle(),
		Clipboard: editor.SystemClipboard{},
		Evaluate:  func(f string) string { return eval.Evaluate(f).String() },
	}
	if ch != nil {
		cfg.OnCellUpdate = ch.PushUpdate
		cfg.OnCursorMove = ch.CursorMoved
	} else {
		// No channel to persist through; write straight to the store.
		cfg.OnCellUpdate = func(u grid.Update) {
			go func() {
				_, err := st.WriteCell(context.WithoutCancel(ctx), opts.sheetID, u.Row, u.Column, store.DataForValue(u.Value))
				if err != nil {
					logger.Warn("persisting cell failed",
						zap.Int("row", u.Row), zap.Int("column", u.Column), zap.Error(err))
				}
			}()
		}
	}

	p = tea.NewProgram(newUI(editor.New(g, cfg), ch), tea.WithAltScreen(), tea.WithMouseAllMotion())

	if ch != nil {
		if err := ch.Start(ctx); err != nil {
			return fmt.Errorf("joining room: %w", err)
		}
		defer ch.Close()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	if opts.csvPath != "" {
		if err := exportCSV(g, opts.csvPath); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return logger, nil
}

func openStore(opts options, logger *zap.Logger) (store.Store, func(), error) {
	switch {
	case opts.apiURL != "":
		ropts := []store.RESTOpt{store.WithLogger(logger)}
		if opts.apiToken != "" {
			ropts = append(ropts, store.WithAuthToken(opts.apiToken))
		}
		s, err := store.NewREST(store.DefaultRESTConfig(opts.apiURL), ropts...)
		if err != nil {
			return nil, nil, fmt.Errorf("cell service: %w", err)
		}
		return s, func() {}, nil
	case opts.dbPath != "":
		s, err := store.NewSQLite(opts.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return store.NewMemWithDemo(), func() {}, nil
	}
}

func exportCSV(g *grid.Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := g.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
