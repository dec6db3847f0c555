package game

import "errors"

var (
	ErrNotInPlay       = errors.New("card is not in play")
	ErrGameOver        = errors.New("game is over")
	ErrInvariant       = errors.New("engine invariant violated")
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrReplayCorrupt   = errors.New("replay checksum mismatch")
	ErrNoReplay        = errors.New("no replay recorded")
)
