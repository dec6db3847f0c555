package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmak94/legallynotset/internal/game"
	"github.com/tmak94/legallynotset/internal/tui"
)

func newReplayCmd(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "replay <key>",
		Short: "Step through a saved game",
		Long:  "Replays are keyed <session>-<round> and read from replay.directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if key != filepath.Base(key) {
				return fmt.Errorf("invalid replay key %q", key)
			}

			logger, err := initLogger(a.cfg.Logging, true)
			if err != nil {
				return err
			}
			a.logger = logger

			replay, err := game.NewReplayRecorder(logger, a.cfg.Replay.Directory).Load(key)
			if err != nil {
				return fmt.Errorf("failed to load replay %s: %w", key, err)
			}

			if dump {
				return dumpReplay(cmd.OutOrStdout(), replay)
			}
			p := tea.NewProgram(tui.NewReplayViewer(key, replay), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				logger.Error("replay viewer failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print every frame instead of opening the viewer")
	return cmd
}

// dumpReplay writes one line per frame.
func dumpReplay(w io.Writer, replay *game.Replay) error {
	for f := replay.Start(); f != nil; f = replay.Next() {
		cards := make([]string, len(f.View.InPlay))
		for i, id := range f.View.InPlay {
			cards[i] = id.String()
		}
		line := fmt.Sprintf("%3d %-9s game=%d score=%d deck=%d over=%t board=%s\n",
			f.Seq, f.Action, f.View.Game, f.View.Score, f.View.DeckRemaining, f.View.GameOver,
			strings.Join(cards, ","))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
