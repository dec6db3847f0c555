package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmak94/legallynotset/internal/game"
	"github.com/tmak94/legallynotset/internal/store"
	"github.com/tmak94/legallynotset/internal/tui"
)

func newPlayCmd(a *app) *cobra.Command {
	var noStore bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := initLogger(a.cfg.Logging, true)
			if err != nil {
				return err
			}
			a.logger = logger

			engine := game.NewEngine(game.NewRNG(a.cfg.Game.Seed), logger)
			opts := []tui.Option{tui.WithLogger(logger)}

			if !noStore && a.cfg.Store.Path != "" {
				results, err := store.Open(cmd.Context(), a.cfg.Store.Path, logger)
				if err != nil {
					return err
				}
				defer results.Close()
				opts = append(opts, tui.WithResults(results))
			}

			p := tea.NewProgram(tui.New(engine, opts...), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				logger.Error("terminal UI failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record finished games")
	return cmd
}
