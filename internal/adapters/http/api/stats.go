// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/huckstats/huck/internal/domain/model"
	"github.com/huckstats/huck/internal/domain/stats"
)

// StatsDependencies defines the interface for aggregation and monitoring.
type StatsDependencies interface {
	ComputeStats(ctx context.Context, events []model.Event) ([]model.PlayerStats, error)
	GetStats() map[string]interface{}
}

// StatsHandler handles aggregation and service monitoring requests.
type StatsHandler struct {
	deps StatsDependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleComputeStats handles POST /stats requests. The body carries a full
// game sequence and the response is the per-player statistics list. The
// operation is all-or-nothing: one malformed event fails the whole call.
func (h *StatsHandler) HandleComputeStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute_stats"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	events := make([]model.Event, 0, len(req.Events))
	for _, e := range req.Events {
		if err := e.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		events = append(events, e.toModel())
	}

	result, err := h.deps.ComputeStats(r.Context(), events)
	if err != nil {
		if errors.Is(err, stats.ErrMalformedEvent) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleServiceStats handles GET /stats/service requests.
func (h *StatsHandler) HandleServiceStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.GetStats())
}
