// Package server implements the bot's HTTP API.
//
// The match server calls /start when a game begins, /move once per tick and
// /end when the game is over. Each (board, bot) pair gets its own decision
// engine, since the engine remembers pursuit and teleporter state between
// ticks.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/diamonds/api"
	"github.com/brensch/diamonds/game"
	"github.com/brensch/diamonds/logic"
	"github.com/brensch/diamonds/store"
)

type Config struct {
	Name    string
	Author  string
	Version string
	// Wire conversion, including how millisecondsLeft maps to moves.
	API api.Options
	// Sink, when set, receives a row per decision.
	Sink   DecisionSink
	Logger *slog.Logger
	// IdleTTL drops sessions that saw no request for this long, for match
	// servers that never call /end. Zero uses DefaultIdleTTL.
	IdleTTL time.Duration
}

const DefaultIdleTTL = 10 * time.Minute

type sessionKey struct {
	board int
	bot   string
}

// session is one bot's engine for one game. mu serializes its ticks.
type session struct {
	id       string
	started  time.Time
	lastSeen time.Time // guarded by Server.mu
	mu       sync.Mutex
	engine   *logic.Engine
	moves    int
}

// Server holds the live engines.
type Server struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	sessions  map[sessionKey]*session
	lastSweep time.Time
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "diamondbot"
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[sessionKey]*session),
	}
}

// Handler routes the bot API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/move", s.handleMove)
	mux.HandleFunc("/end", s.handleEnd)
	return mux
}

// Sessions reports how many games are in progress.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) newSession() *session {
	eng := logic.NewEngine()
	id := uuid.NewString()
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		eng = logic.NewEngine(logic.WithLogger(s.logger.With("session", id)))
	}
	now := time.Now()
	return &session{id: id, started: now, lastSeen: now, engine: eng}
}

// session returns the engine for key, creating one if needed. fresh replaces
// any existing engine.
func (s *Server) session(key sessionKey, fresh bool) *session {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= s.cfg.IdleTTL/2 {
		s.sweepLocked(now)
	}
	if sess, ok := s.sessions[key]; ok && !fresh {
		sess.lastSeen = now
		return sess
	}
	sess := s.newSession()
	s.sessions[key] = sess
	return sess
}

// Sweep drops sessions idle for longer than the configured TTL as of now and
// returns how many it dropped.
func (s *Server) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *Server) sweepLocked(now time.Time) int {
	s.lastSweep = now
	dropped := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.cfg.IdleTTL {
			delete(s.sessions, key)
			dropped++
			s.logger.Info("session expired", "board", key.board, "bot", key.bot, "session", sess.id, "idle", now.Sub(sess.lastSeen).String())
		}
	}
	return dropped
}

func (s *Server) drop(key sessionKey) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	return sess, ok
}

// handleIndex returns the bot info
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, api.InfoResponse{
		APIVersion: "1",
		Author:     s.cfg.Author,
		Name:       s.cfg.Name,
		Version:    s.cfg.Version,
	})
}

// decode reads a game request and resolves the acting bot. It writes the
// error response itself and returns ok=false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (api.GameRequest, game.Bot, *game.Board, bool) {
	var req api.GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, game.Bot{}, nil, false
	}
	bot, board, err := req.BotFor(s.cfg.API)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, api.ErrNoBot) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return req, game.Bot{}, nil, false
	}
	return req, bot, board, true
}

// handleStart is called when a game starts
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req, bot, _, ok := s.decode(w, r)
	if !ok {
		return
	}
	sess := s.session(sessionKey{board: req.Board.ID, bot: req.BotID}, true)
	s.logger.Info("game started",
		"board", req.Board.ID,
		"bot", bot.Name,
		"session", sess.id,
		"ticks_left", bot.TicksLeft,
	)
	w.WriteHeader(http.StatusOK)
}

// handleMove runs one engine tick
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	req, bot, board, ok := s.decode(w, r)
	if !ok {
		return
	}
	sess := s.session(sessionKey{board: req.Board.ID, bot: req.BotID}, false)

	sess.mu.Lock()
	d := sess.engine.Decide(bot, board)
	sess.moves++
	sess.mu.Unlock()

	if s.cfg.Sink != nil {
		row, err := store.NewDecisionRow(sess.id, store.SourceServer, bot, board, d)
		if err == nil {
			err = s.cfg.Sink.Record(row)
		}
		if err != nil {
			s.logger.Warn("record decision", "session", sess.id, "err", err)
		}
	}

	move := d.Direction()
	writeJSON(w, api.MoveResponse{
		Direction: move.String(),
		DX:        move.DX,
		DY:        move.DY,
		Target:    api.Position{X: d.Target.X, Y: d.Target.Y},
		Category:  d.Winner.Category.String(),
	})

	s.logger.Debug("move",
		"board", req.Board.ID,
		"bot", bot.Name,
		"move", move.String(),
		"category", d.Winner.Category.String(),
		"elapsed", time.Since(startTime),
	)
}

// handleEnd is called when a game ends
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	req, bot, _, ok := s.decode(w, r)
	if !ok {
		return
	}
	sess, found := s.drop(sessionKey{board: req.Board.ID, bot: req.BotID})
	attrs := []any{"board", req.Board.ID, "bot", bot.Name, "score", bot.Score}
	if found {
		sess.mu.Lock()
		attrs = append(attrs, "session", sess.id, "moves", sess.moves, "duration", time.Since(sess.started))
		sess.mu.Unlock()
	}
	s.logger.Info("game ended", attrs...)
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
