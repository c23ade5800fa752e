package model

import "time"

// Game groups the points and events of one match against one opponent.
type Game struct {
	ID             string
	TournamentName string
	OpponentName   string
	Date           time.Time
	// Weather can affect yardage numbers (wind, rain); free-form.
	WeatherCondition string
}

// Player is a roster entry.
type Player struct {
	ID           string
	Name         string
	JerseyNumber int
	// GenderMatch supports mixed-division ratio tracking.
	GenderMatch string
}

// Point is one point of play within a game, with the score snapshot at
// its start and whether the team began on offense or defense.
type Point struct {
	ID        string
	GameID    string
	ScoreHome int
	ScoreAway int
	// StartingStance is "O" or "D".
	StartingStance string
}
