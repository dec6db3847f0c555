// Package server exposes game sessions over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tmak94/legallynotset/internal/game"
	"github.com/tmak94/legallynotset/internal/game/triad"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
	shutdownGrace  = 5 * time.Second
)

// Leaderboard serves the best finished games.
type Leaderboard interface {
	TopScores(ctx context.Context, limit int) ([]game.Result, error)
}

// Config holds the transport settings.
type Config struct {
	Address      string
	ReadLimit    int64
	WriteTimeout time.Duration
}

// Server serves /ws and /healthz.
type Server struct {
	cfg         Config
	manager     *game.Manager
	leaderboard Leaderboard
	logger      *zap.Logger
	hub         *Hub
	upgrader    websocket.Upgrader
}

// New creates a server. leaderboard may be nil.
func New(cfg Config, manager *game.Manager, leaderboard Leaderboard, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:         cfg,
		manager:     manager,
		leaderboard: leaderboard,
		logger:      logger,
		hub:         newHub(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", s.serveHealth)
	return mux
}

// Run listens on cfg.Address until ctx is cancelled, then shuts down and
// disconnects every client.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("websocket server listening", zap.String("address", s.cfg.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("websocket server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.hub.closeAll()
	<-errCh
	s.logger.Info("websocket server stopped")
	return err
}

// Close disconnects every client.
func (s *Server) Close() {
	s.hub.closeAll()
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.manager.Count(),
		"clients":  s.hub.count(),
	})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	s.hub.register(c)

	go c.writePump(s.cfg.WriteTimeout)
	go c.readPump(s)
}

// Hub tracks connected clients.
type Hub struct {
	clients map[*Client]bool
	mu      sync.Mutex
	logger  *zap.Logger
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("client registered", zap.Int("clients", n))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("client unregistered", zap.Int("clients", n))
	}
}

func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// closeAll drops every connection; each read pump then unregisters itself.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

// Client is one WebSocket connection.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{} // closed when the write pump exits
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *Client) readPump(s *Server) {
	defer func() {
		c.cancel()
		s.hub.unregister(c)
		c.conn.Close()
	}()

	if s.cfg.ReadLimit > 0 {
		c.conn.SetReadLimit(s.cfg.ReadLimit)
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg Message
		var reply []byte
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = errorFrame("", CodeBadRequest, fmt.Sprintf("malformed message: %v", err))
		} else {
			reply = s.handleMessage(c.ctx, msg)
		}

		select {
		case c.send <- reply:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump(writeTimeout time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	deadline := func() time.Time {
		if writeTimeout <= 0 {
			return time.Time{}
		}
		return time.Now().Add(writeTimeout)
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(deadline())
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(deadline())
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage runs one request and returns the frame to send back.
func (s *Server) handleMessage(ctx context.Context, msg Message) []byte {
	s.logger.Debug("received message",
		zap.String("type", msg.Type),
		zap.String("session_id", msg.SessionID),
	)

	var (
		update    game.Update
		sessionID = msg.SessionID
		err       error
	)
	switch msg.Type {
	case TypeNewGame:
		if sessionID == "" {
			var sess *game.Session
			sess, update, err = s.manager.Create(ctx)
			if sess != nil {
				sessionID = sess.ID
			}
		} else {
			update, err = s.manager.NewGame(ctx, sessionID)
		}

	case TypeSelect:
		switch {
		case sessionID == "":
			err = errMissingSession
		case msg.Card == nil:
			err = errMissingCard
		default:
			update, err = s.manager.Toggle(ctx, sessionID, *msg.Card)
		}

	case TypeShuffle:
		if sessionID == "" {
			err = errMissingSession
		} else {
			update, err = s.manager.Shuffle(ctx, sessionID)
		}

	case TypeReset:
		if sessionID == "" {
			err = errMissingSession
		} else {
			update, err = s.manager.Reset(ctx, sessionID)
		}

	case TypeState:
		if sessionID == "" {
			err = errMissingSession
		} else {
			update, err = s.manager.State(sessionID)
		}

	case TypeHint:
		if sessionID == "" {
			return s.failure(sessionID, msg.Type, errMissingSession)
		}
		return s.handleHint(sessionID)

	case TypeReplay:
		if sessionID == "" {
			return s.failure(sessionID, msg.Type, errMissingSession)
		}
		return s.handleReplay(sessionID)

	case TypeLeaderboard:
		return s.handleLeaderboard(ctx, msg)

	default:
		return errorFrame(sessionID, CodeUnknownType, fmt.Sprintf("unknown message type %q", msg.Type))
	}

	if err != nil {
		return s.failure(sessionID, msg.Type, err)
	}
	frame, err := encode(TypeStateUpdate, sessionID, update)
	if err != nil {
		return s.failure(sessionID, msg.Type, err)
	}
	return frame
}

func (s *Server) handleHint(sessionID string) []byte {
	cards, found, err := s.manager.Hint(sessionID)
	if err != nil {
		return s.failure(sessionID, TypeHint, err)
	}
	payload := HintPayload{Cards: []triad.Identity{}}
	if found {
		payload.Cards = cards[:]
	}
	frame, err := encode(TypeHintReply, sessionID, payload)
	if err != nil {
		return s.failure(sessionID, TypeHint, err)
	}
	return frame
}

func (s *Server) handleReplay(sessionID string) []byte {
	key, frames, err := s.manager.Replay(sessionID)
	if err != nil {
		return s.failure(sessionID, TypeReplay, err)
	}
	frame, err := encode(TypeReplayReply, sessionID, ReplayPayload{Key: key, Frames: frames})
	if err != nil {
		return s.failure(sessionID, TypeReplay, err)
	}
	return frame
}

func (s *Server) handleLeaderboard(ctx context.Context, msg Message) []byte {
	if s.leaderboard == nil {
		return s.failure(msg.SessionID, msg.Type, errNoLeaderboard)
	}

	req := LeaderboardRequest{Limit: defaultLeaderboardLimit}
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return errorFrame(msg.SessionID, CodeBadRequest, fmt.Sprintf("malformed leaderboard request: %v", err))
		}
	}
	if req.Limit <= 0 || req.Limit > maxLeaderboardLimit {
		req.Limit = defaultLeaderboardLimit
	}

	results, err := s.leaderboard.TopScores(ctx, req.Limit)
	if err != nil {
		return s.failure(msg.SessionID, msg.Type, err)
	}
	if results == nil {
		results = []game.Result{}
	}
	frame, err := encode(TypeLeaderboardReply, msg.SessionID, LeaderboardPayload{Results: results})
	if err != nil {
		return s.failure(msg.SessionID, msg.Type, err)
	}
	return frame
}

func (s *Server) failure(sessionID, typ string, err error) []byte {
	code := errorCode(err)
	if code == CodeInternal {
		s.logger.Error("request failed",
			zap.String("type", typ),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
	return errorFrame(sessionID, code, err.Error())
}
