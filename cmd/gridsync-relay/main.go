package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pixelsheets/gridsync/collab/relay"
)

func main() {
	var addr string
	root := &cobra.Command{
		Use:   "gridsync-relay",
		Short: "Development room relay for gridsync clients",
		Long: `gridsync-relay fans every frame out to all members of a sheet room,
sender included. It is meant for local development and tests; production
deployments bring their own room infrastructure.

Clients connect to ws://<addr>/ws.`,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			return serve(addr)
		},
	}
	root.Flags().StringVar(&addr, "addr", ":8811", "listen address")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(addr string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	mux := http.NewServeMux()
	mux.Handle("/ws", relay.New(relay.WithLogger(logger)))

	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("relay listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
