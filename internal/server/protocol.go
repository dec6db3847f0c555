package server

import (
	"encoding/json"
	"errors"

	"github.com/tmak94/legallynotset/internal/game"
	"github.com/tmak94/legallynotset/internal/game/triad"
)

// Request types sent by clients.
const (
	TypeNewGame     = "new_game"
	TypeSelect      = "select"
	TypeShuffle     = "shuffle"
	TypeReset       = "reset"
	TypeState       = "state"
	TypeHint        = "hint"
	TypeReplay      = "replay"
	TypeLeaderboard = "leaderboard"
)

// Response types sent by the server.
const (
	TypeStateUpdate      = "state"
	TypeHintReply        = "hint"
	TypeReplayReply      = "replay"
	TypeLeaderboardReply = "leaderboard"
	TypeError            = "error"
)

// Error codes carried in error frames.
const (
	CodeBadRequest      = "bad_request"
	CodeUnknownType     = "unknown_type"
	CodeSessionNotFound = "session_not_found"
	CodeTooManySessions = "too_many_sessions"
	CodeNotInPlay       = "not_in_play"
	CodeGameOver        = "game_over"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Message is the single frame shape used in both directions.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Card      *triad.Identity `json:"card,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// LeaderboardRequest is the optional data of a leaderboard request.
type LeaderboardRequest struct {
	Limit int `json:"limit"`
}

// ErrorPayload is the data of an error frame.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HintPayload is the data of a hint frame. Cards is empty when the board
// holds no triad.
type HintPayload struct {
	Cards []triad.Identity `json:"cards"`
}

// ReplayPayload is the data of a replay frame: every step of the session's
// current game so far.
type ReplayPayload struct {
	Key    string       `json:"key"`
	Frames []game.Frame `json:"frames"`
}

// LeaderboardPayload is the data of a leaderboard frame.
type LeaderboardPayload struct {
	Results []game.Result `json:"results"`
}

var (
	errMissingSession = errors.New("session_id is required")
	errMissingCard    = errors.New("card is required")
	errNoLeaderboard  = errors.New("leaderboard is not configured")
)

// errorCode maps engine and session errors onto wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, game.ErrTooManySessions):
		return CodeTooManySessions
	case errors.Is(err, game.ErrNotInPlay):
		return CodeNotInPlay
	case errors.Is(err, game.ErrGameOver):
		return CodeGameOver
	case errors.Is(err, triad.ErrInvalidIdentity),
		errors.Is(err, errMissingSession),
		errors.Is(err, errMissingCard):
		return CodeBadRequest
	case errors.Is(err, errNoLeaderboard),
		errors.Is(err, game.ErrNoReplay):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

func encode(typ, sessionID string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, SessionID: sessionID, Data: raw})
}

func errorFrame(sessionID, code, msg string) []byte {
	// ErrorPayload always marshals.
	frame, _ := encode(TypeError, sessionID, ErrorPayload{Code: code, Message: msg})
	return frame
}
