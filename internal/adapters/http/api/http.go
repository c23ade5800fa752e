// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/huckstats/huck/internal/adapters/repository"
	"github.com/huckstats/huck/internal/domain/dedupe"
	"github.com/huckstats/huck/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an event for async persistence. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.Event) bool

	// ComputeStats aggregates a raw event sequence without touching storage.
	ComputeStats(ctx context.Context, events []model.Event) ([]model.PlayerStats, error)

	// Game operations.
	CreateGame(ctx context.Context, g model.Game) (model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	ListGames(ctx context.Context) ([]model.Game, error)
	GameStats(ctx context.Context, gameID string) ([]model.PlayerStats, error)
	GameEvents(ctx context.Context, gameID string) ([]model.Event, error)
	CreatePoint(ctx context.Context, p model.Point) (model.Point, error)
	GamePoints(ctx context.Context, gameID string) ([]model.Point, error)

	// Roster operations.
	CreatePlayer(ctx context.Context, p model.Player) (model.Player, error)
	ListPlayers(ctx context.Context) ([]model.Player, error)

	// GetStats exposes the monitoring snapshot.
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	gamesHandler   *GamesHandler
	playersHandler *PlayersHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		eventsHandler:  NewEventsHandler(deps),
		gamesHandler:   NewGamesHandler(deps),
		playersHandler: NewPlayersHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleComputeStats, "stats"))
	mux.HandleFunc("/stats/service", MetricsMiddleware(s.statsHandler.HandleServiceStats, "stats_service"))
	mux.HandleFunc("/games", MetricsMiddleware(s.gamesHandler.HandleGames, "games"))
	mux.HandleFunc("/games/", MetricsMiddleware(s.gamesHandler.HandleGameSubresource, "game"))
	mux.HandleFunc("/players", MetricsMiddleware(s.playersHandler.HandlePlayers, "players"))
}

// eventRequest mirrors the OpenAPI schema for a single event.
type eventRequest struct {
	EventID    string  `json:"event_id,omitempty"`
	GameID     string  `json:"game_id,omitempty"`
	PlayerName string  `json:"player_name"`
	ActionType string  `json:"action_type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Timestamp  string  `json:"timestamp"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.PlayerName) == "":
		return errors.New("missing player_name")
	case strings.TrimSpace(e.ActionType) == "":
		return errors.New("missing action_type")
	case strings.TrimSpace(e.Timestamp) == "":
		return errors.New("missing timestamp")
	}
	if math.IsNaN(e.X) || math.IsInf(e.X, 0) || math.IsNaN(e.Y) || math.IsInf(e.Y, 0) {
		return errors.New("coordinates must be finite")
	}
	if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
		return errors.New("invalid timestamp; must be RFC3339")
	}
	return nil
}

// toModel converts a validated request into a domain event.
func (e eventRequest) toModel() model.Event {
	ts, _ := time.Parse(time.RFC3339, e.Timestamp)
	return model.Event{
		EventID:    e.EventID,
		GameID:     e.GameID,
		PlayerName: e.PlayerName,
		Action:     model.ParseAction(e.ActionType),
		Position:   model.Position{X: e.X, Y: e.Y},
		Timestamp:  ts,
	}
}

// sequenceRequest mirrors the OpenAPI schema for POST /stats.
type sequenceRequest struct {
	Events []eventRequest `json:"events"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
