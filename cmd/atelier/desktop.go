package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/atelier"
	"github.com/jpalmerr/atelier/internal/server"
	"github.com/jpalmerr/atelier/internal/shell"
)

// runDesktop opens the native window. The wails event loop owns the main
// goroutine; the coordinator runs beside it and quits it when done.
func runDesktop(cmd *cobra.Command, args []string) error {
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

	policy := policyOf(cfg)
	window := atelier.DefaultWindowOptions()
	window.Title = cfg.Title
	window.Width, window.Height = cfg.Window.Width, cfg.Window.Height

	sh := shell.NewWails(shell.WailsConfig{
		Window:    window,
		KeepAlive: policy == atelier.KeepAlive,
		DevTools:  dev,
		Logger:    logger.With().Str("component", "shell").Logger(),
	})

	opts := append(coordinatorOptions(cfg, srv, sh, dev),
		atelier.WithPolicy(policy),
		atelier.WithLogger(logger),
	)
	coord, err := atelier.New(opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create application")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return coord.Run(gctx)
	})

	logger.Info().Str("version", version).Stringer("policy", policy).Bool("dev", dev).Msg("starting atelier")
	shellErr := sh.Run(coord.Post)

	// the shell can exit on its own (for example a platform quit); make
	// sure the coordinator stops the server either way
	if err := coord.Post(atelier.Event{Type: atelier.EventBeforeQuit}); err != nil && !errors.Is(err, atelier.ErrStopped) {
		logger.Warn().Err(err).Msg("failed to post quit")
	}

	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return shellErr
}
