// Package stats derives per-player statistics from a game event sequence.
//
// The engine is a pure batch fold: it sorts a finite event list by
// timestamp, walks adjacent pairs once, and attributes touches, throwing
// yardage, receiving yardage, and turnovers to player names. It holds no
// state between calls and is safe for concurrent callers.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/huckstats/huck/internal/domain/model"
)

// Aggregator computes per-player statistics from raw events.
type Aggregator interface {
	// Aggregate transforms a finite event sequence into one PlayerStats
	// record per player observed in a pairwise evaluation. Input order is
	// irrelevant; the engine sorts by timestamp first. Zero or one events
	// yield an empty result. Malformed events fail the whole call.
	Aggregate(ctx context.Context, events []model.Event) ([]model.PlayerStats, error)
}

// Engine implements Aggregator. The aggregation rules are fixed; there
// are no tunable parameters.
type Engine struct{}

// NewEngine creates a new aggregation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// tally is the per-player accumulator. Yardage keeps full float64
// precision until emission.
type tally struct {
	touches        int
	throwingYards  float64
	receivingYards float64
	turnovers      int
}

// Aggregate implements Aggregator.
func (e *Engine) Aggregate(ctx context.Context, events []model.Event) ([]model.PlayerStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	// No pairwise comparison is possible; degenerate, not an error.
	if len(events) < 2 {
		return []model.PlayerStats{}, nil
	}

	if err := validate(events); err != nil {
		return nil, err
	}

	// Sort a copy; callers hand us read-only input. The sort is stable:
	// events with equal timestamps keep their original relative order,
	// so the walk below is deterministic for any given input slice.
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	acc := make(map[string]*tally)

	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		curr := sorted[i]

		// Both actors of an adjacent pair get an accumulator entry even
		// when no rule fires for the pair.
		receiver := getOrInsert(acc, curr.PlayerName)
		thrower := getOrInsert(acc, prev.PlayerName)

		switch {
		case curr.Action == model.ActionCatch && completesThrow(prev.Action):
			// A catch immediately after a catch or pull is a completed
			// throw. The thrower of record is whoever acted immediately
			// before, regardless of that actor's own action kind.
			dist := prev.Position.DistanceTo(curr.Position)
			thrower.throwingYards += dist
			receiver.receivingYards += dist
			receiver.touches++
		case curr.Action == model.ActionTurnover:
			receiver.turnovers++
		}
	}

	out := make([]model.PlayerStats, 0, len(acc))
	for name, t := range acc {
		out = append(out, model.PlayerStats{
			PlayerName:     name,
			Touches:        t.touches,
			ThrowingYards:  round1(t.throwingYards),
			ReceivingYards: round1(t.receivingYards),
			Turnovers:      t.turnovers,
		})
	}
	return out, nil
}

// completesThrow reports whether an action can precede a catch in a
// completed throw-and-catch pair.
func completesThrow(a model.ActionType) bool {
	return a == model.ActionCatch || a == model.ActionPull
}

// getOrInsert returns the accumulator for name, creating a zeroed one on
// first reference.
func getOrInsert(acc map[string]*tally, name string) *tally {
	if t, ok := acc[name]; ok {
		return t
	}
	t := &tally{}
	acc[name] = t
	return t
}

// validate rejects events that cannot participate in aggregation. It
// runs before any accumulation so the operation stays all-or-nothing.
// Non-finite coordinates are rejected rather than propagated as
// non-finite yardage.
func validate(events []model.Event) error {
	for i, ev := range events {
		switch {
		case strings.TrimSpace(ev.PlayerName) == "":
			return fmt.Errorf("event %d: %w: missing player name", i, ErrMalformedEvent)
		case ev.Timestamp.IsZero():
			return fmt.Errorf("event %d: %w: missing timestamp", i, ErrMalformedEvent)
		case !ev.Position.Finite():
			return fmt.Errorf("event %d: %w: non-finite position", i, ErrMalformedEvent)
		}
	}
	return nil
}

// round1 rounds to one decimal place. Applied only at emission; the
// accumulators keep full precision across additions.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
