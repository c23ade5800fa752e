// Package model contains domain records passed between layers.
package model

import (
	"math"
	"time"
)

// Position is a point on the field in yards. X spans the field width
// (0-40), Y the length (0-110, end zones included).
type Position struct {
	X float64
	Y float64
}

// DistanceTo returns the straight-line distance to other, in yards.
func (p Position) DistanceTo(other Position) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// Finite reports whether both coordinates are finite numbers.
func (p Position) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Event represents one recorded action by one named player. Events are
// read-only inputs to the aggregation engine and are never mutated.
type Event struct {
	EventID    string     // unique id for idempotency
	GameID     string     // game the event belongs to
	PlayerName string     // actor identity, matched literally
	Action     ActionType // what the actor did
	Position   Position   // where on the field it happened
	Timestamp  time.Time  // establishes sequence order only
}
