// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/huckstats/huck/internal/domain/model"
)

// PlayerDependencies defines the interface for roster operations.
type PlayerDependencies interface {
	CreatePlayer(ctx context.Context, p model.Player) (model.Player, error)
	ListPlayers(ctx context.Context) ([]model.Player, error)
}

// PlayersHandler handles roster requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// playerRequest mirrors the OpenAPI schema for POST /players.
type playerRequest struct {
	Name         string `json:"name"`
	JerseyNumber int    `json:"jersey_number,omitempty"`
	GenderMatch  string `json:"gender_match,omitempty"`
}

// playerResponse mirrors the OpenAPI schema for roster reads.
type playerResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	JerseyNumber int    `json:"jersey_number,omitempty"`
	GenderMatch  string `json:"gender_match,omitempty"`
}

func toPlayerResponse(p model.Player) playerResponse {
	return playerResponse{
		ID:           p.ID,
		Name:         p.Name,
		JerseyNumber: p.JerseyNumber,
		GenderMatch:  p.GenderMatch,
	}
}

// HandlePlayers handles POST /players and GET /players requests.
func (h *PlayersHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.players"
	switch r.Method {
	case http.MethodPost:
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing name")))
			return
		}
		created, err := h.deps.CreatePlayer(r.Context(), model.Player{
			Name:         req.Name,
			JerseyNumber: req.JerseyNumber,
			GenderMatch:  req.GenderMatch,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, toPlayerResponse(created))

	case http.MethodGet:
		players, err := h.deps.ListPlayers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		out := make([]playerResponse, len(players))
		for i, p := range players {
			out[i] = toPlayerResponse(p)
		}
		writeJSON(w, http.StatusOK, out)

	default:
		http.NotFound(w, r)
	}
}
