package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmak94/legallynotset/internal/game"
	"github.com/tmak94/legallynotset/internal/server"
	"github.com/tmak94/legallynotset/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Host game sessions over WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := initLogger(a.cfg.Logging, false)
			if err != nil {
				return err
			}
			a.logger = logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	logger.Info("starting triad server",
		zap.String("version", version),
		zap.String("config", a.configPath),
	)

	opts := []game.ManagerOption{
		game.WithMaxSessions(cfg.Server.MaxSessions),
		game.WithSeed(cfg.Game.Seed),
	}

	var leaderboard server.Leaderboard
	if cfg.Store.Path != "" {
		results, err := store.Open(ctx, cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer results.Close()
		opts = append(opts, game.WithResultRecorder(results))
		leaderboard = results
	} else {
		logger.Warn("results store disabled; leaderboard unavailable")
	}

	if cfg.Replay.Enabled {
		opts = append(opts, game.WithReplays(game.NewReplayRecorder(logger, cfg.Replay.Directory)))
	}

	manager := game.NewManager(logger, opts...)
	defer manager.CloseAll()

	cleanupCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go manager.CleanupExpired(cleanupCtx, cfg.Server.SessionTTL, cfg.Server.CleanupInterval)

	srv := server.New(server.Config{
		Address:      cfg.Server.WebSocket.Address,
		ReadLimit:    cfg.Server.WebSocket.ReadLimit,
		WriteTimeout: cfg.Server.WebSocket.WriteTimeout,
	}, manager, leaderboard, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server shutdown complete")
	return nil
}
