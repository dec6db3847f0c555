package game

import (
	"context"
	"time"
)

// Result is the final tally of one finished game.
type Result struct {
	SessionID     string    `json:"session_id"`
	Score         int       `json:"score"`
	Claimed       int       `json:"claimed"`
	DeckRemaining int       `json:"deck_remaining"`
	FinishedAt    time.Time `json:"finished_at"`
}

// ResultRecorder persists finished games.
type ResultRecorder interface {
	RecordResult(ctx context.Context, r Result) error
}

// ResultFromView builds the Result for a finished view.
func ResultFromView(sessionID string, v View, at time.Time) Result {
	return Result{
		SessionID:     sessionID,
		Score:         v.Score,
		Claimed:       v.Claimed,
		DeckRemaining: v.DeckRemaining,
		FinishedAt:    at,
	}
}
