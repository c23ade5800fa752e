// Package model contains domain records passed between layers.
package model

// ActionType identifies what a player did at a recorded position.
// The set mirrors the actions trackable from the sideline; unrecognized
// strings are preserved as ActionOther and silently ignored by the
// aggregation engine.
type ActionType string

// Recognized action types.
const (
	ActionPull         ActionType = "pull"
	ActionCatch        ActionType = "catch"
	ActionGoal         ActionType = "goal"
	ActionTurnover     ActionType = "turnover"
	ActionThrowaway    ActionType = "throwaway"
	ActionDrop         ActionType = "drop"
	ActionStall        ActionType = "stall"
	ActionDefenseBlock ActionType = "defense_block"
	ActionCallahan     ActionType = "callahan"

	// ActionOther stands in for any action string the service does not
	// recognize. Events carrying it are accepted but never contribute to
	// statistics.
	ActionOther ActionType = "other"
)

// known is the closed set of action types with gameplay meaning.
var known = map[ActionType]struct{}{
	ActionPull:         {},
	ActionCatch:        {},
	ActionGoal:         {},
	ActionTurnover:     {},
	ActionThrowaway:    {},
	ActionDrop:         {},
	ActionStall:        {},
	ActionDefenseBlock: {},
	ActionCallahan:     {},
}

// ParseAction maps a raw action string to an ActionType. Unknown strings
// map to ActionOther; parsing never fails.
func ParseAction(s string) ActionType {
	a := ActionType(s)
	if _, ok := known[a]; ok {
		return a
	}
	return ActionOther
}

// String returns the wire representation of the action.
func (a ActionType) String() string {
	return string(a)
}

// TeamSide distinguishes the tracked team from its opponent.
type TeamSide string

// Team sides.
const (
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)
