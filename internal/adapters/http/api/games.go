// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/huckstats/huck/internal/domain/model"
)

// GameDependencies defines the interface for game operations.
type GameDependencies interface {
	CreateGame(ctx context.Context, g model.Game) (model.Game, error)
	GetGame(ctx context.Context, id string) (model.Game, error)
	ListGames(ctx context.Context) ([]model.Game, error)
	GameStats(ctx context.Context, gameID string) ([]model.PlayerStats, error)
	GameEvents(ctx context.Context, gameID string) ([]model.Event, error)
	CreatePoint(ctx context.Context, p model.Point) (model.Point, error)
	GamePoints(ctx context.Context, gameID string) ([]model.Point, error)
}

// GamesHandler handles game requests.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// gameRequest mirrors the OpenAPI schema for POST /games.
type gameRequest struct {
	TournamentName   string `json:"tournament_name"`
	OpponentName     string `json:"opponent_name"`
	Date             string `json:"date,omitempty"`
	WeatherCondition string `json:"weather_condition,omitempty"`
}

// gameResponse mirrors the OpenAPI schema for game reads.
type gameResponse struct {
	ID               string `json:"id"`
	TournamentName   string `json:"tournament_name"`
	OpponentName     string `json:"opponent_name"`
	Date             string `json:"date,omitempty"`
	WeatherCondition string `json:"weather_condition,omitempty"`
}

func toGameResponse(g model.Game) gameResponse {
	resp := gameResponse{
		ID:               g.ID,
		TournamentName:   g.TournamentName,
		OpponentName:     g.OpponentName,
		WeatherCondition: g.WeatherCondition,
	}
	if !g.Date.IsZero() {
		resp.Date = g.Date.Format(time.RFC3339)
	}
	return resp
}

// pointRequest mirrors the OpenAPI schema for POST /games/{id}/points.
type pointRequest struct {
	ScoreHome      int    `json:"score_home"`
	ScoreAway      int    `json:"score_away"`
	StartingStance string `json:"starting_stance,omitempty"`
}

// pointResponse mirrors the OpenAPI schema for point reads.
type pointResponse struct {
	ID             string `json:"id"`
	GameID         string `json:"game_id"`
	ScoreHome      int    `json:"score_home"`
	ScoreAway      int    `json:"score_away"`
	StartingStance string `json:"starting_stance,omitempty"`
}

func toPointResponse(p model.Point) pointResponse {
	return pointResponse{
		ID:             p.ID,
		GameID:         p.GameID,
		ScoreHome:      p.ScoreHome,
		ScoreAway:      p.ScoreAway,
		StartingStance: p.StartingStance,
	}
}

// eventResponse mirrors the OpenAPI schema for event reads.
type eventResponse struct {
	EventID    string  `json:"event_id"`
	GameID     string  `json:"game_id"`
	PlayerName string  `json:"player_name"`
	ActionType string  `json:"action_type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Timestamp  string  `json:"timestamp"`
}

func toEventResponse(e model.Event) eventResponse {
	return eventResponse{
		EventID:    e.EventID,
		GameID:     e.GameID,
		PlayerName: e.PlayerName,
		ActionType: e.Action.String(),
		X:          e.Position.X,
		Y:          e.Position.Y,
		Timestamp:  e.Timestamp.Format(time.RFC3339),
	}
}

// HandleGames handles POST /games and GET /games requests.
func (h *GamesHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	const op = "api.games"
	switch r.Method {
	case http.MethodPost:
		var req gameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if strings.TrimSpace(req.TournamentName) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing tournament_name")))
			return
		}
		game := model.Game{
			TournamentName:   req.TournamentName,
			OpponentName:     req.OpponentName,
			WeatherCondition: req.WeatherCondition,
		}
		if req.Date != "" {
			date, err := time.Parse(time.RFC3339, req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid date; must be RFC3339")))
				return
			}
			game.Date = date
		}
		created, err := h.deps.CreateGame(r.Context(), game)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, toGameResponse(created))

	case http.MethodGet:
		games, err := h.deps.ListGames(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		out := make([]gameResponse, len(games))
		for i, g := range games {
			out[i] = toGameResponse(g)
		}
		writeJSON(w, http.StatusOK, out)

	default:
		http.NotFound(w, r)
	}
}

// HandleGameSubresource handles GET /games/{id} plus the stats, events, and
// points subresources under a game.
func (h *GamesHandler) HandleGameSubresource(w http.ResponseWriter, r *http.Request) {
	const op = "api.game"
	// Extract path segments after /games/
	path := strings.TrimPrefix(r.URL.Path, "/games/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	gameID, sub, _ := strings.Cut(path, "/")
	if gameID == "" || strings.Contains(sub, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch sub {
	case "":
		h.handleGetGame(w, r, gameID)
	case "stats":
		h.handleGameStats(w, r, gameID)
	case "events":
		h.handleGameEvents(w, r, gameID)
	case "points":
		h.handleGamePoints(w, r, gameID)
	default:
		http.NotFound(w, r)
	}
}

func (h *GamesHandler) handleGetGame(w http.ResponseWriter, r *http.Request, gameID string) {
	const op = "api.get_game"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	game, err := h.deps.GetGame(r.Context(), gameID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(game))
}

func (h *GamesHandler) handleGameStats(w http.ResponseWriter, r *http.Request, gameID string) {
	const op = "api.game_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.GameStats(r.Context(), gameID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *GamesHandler) handleGameEvents(w http.ResponseWriter, r *http.Request, gameID string) {
	const op = "api.game_events"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	events, err := h.deps.GameEvents(r.Context(), gameID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	out := make([]eventResponse, len(events))
	for i, e := range events {
		out[i] = toEventResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *GamesHandler) handleGamePoints(w http.ResponseWriter, r *http.Request, gameID string) {
	const op = "api.game_points"
	switch r.Method {
	case http.MethodPost:
		var req pointRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		created, err := h.deps.CreatePoint(r.Context(), model.Point{
			GameID:         gameID,
			ScoreHome:      req.ScoreHome,
			ScoreAway:      req.ScoreAway,
			StartingStance: req.StartingStance,
		})
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, toPointResponse(created))

	case http.MethodGet:
		points, err := h.deps.GamePoints(r.Context(), gameID)
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		out := make([]pointResponse, len(points))
		for i, p := range points {
			out[i] = toPointResponse(p)
		}
		writeJSON(w, http.StatusOK, out)

	default:
		http.NotFound(w, r)
	}
}
