package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/atelier"
	"github.com/jpalmerr/atelier/internal/server"
	"github.com/jpalmerr/atelier/internal/shell"
)

const shutdownTimeout = 10 * time.Second

// serveCmd runs the API without a native window.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server without a window",
	Long: `Run the embedded API and UI without opening a native window.

The server will:
  - Open (and migrate) the database in the data directory
  - Serve the API and UI on the configured host and port
  - Run the reminder sweep on its schedule

Open the printed URL in a browser. The server runs until interrupted
(Ctrl+C) or it receives SIGTERM.

Example:
  atelier serve
  atelier serve -c atelier.yaml --port 3002`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dev := devMode()

	logger, closer := newLogger(cfg.Log, dev, cmd.ErrOrStderr())
	defer closer.Close()

	srvCfg := serverConfig(cfg)
	srvCfg.Logger = logger.With().Str("component", "server").Logger()
	srv := server.New(srvCfg)

	sh := shell.NewHeadless(logger.With().Str("component", "shell").Logger())

	// nobody closes a headless window, so only a signal ends the run
	opts := append(coordinatorOptions(cfg, srv, sh, dev),
		atelier.WithPolicy(atelier.KeepAlive),
		atelier.WithLogger(logger),
	)
	coord, err := atelier.New(opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create application")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var g errgroup.Group
	g.Go(func() error {
		return coord.Run(ctx)
	})
	g.Go(func() error {
		if err := sh.Start(coord.Post); err != nil && !errors.Is(err, atelier.ErrStopped) {
			return err
		}
		return nil
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- g.Wait()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return errors.Wrap(err, "server error")
		}
		logger.Info().Msg("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return errors.Wrap(err, "server error")
			}
			logger.Info().Msg("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn().Dur("timeout", shutdownTimeout).Msg("shutdown timed out, forcing exit")
			return nil
		}
	}
}
