package simulate

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Points   int           // Number of points to simulate
	Workers  int           // Number of concurrent submitters
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Enable verbose logging
	Tourney  string        // Tournament name for the seeded game
	Opponent string        // Opponent name for the seeded game
}

// Event mirrors the wire shape for POST /events.
type Event struct {
	EventID    string  `json:"event_id"`
	GameID     string  `json:"game_id"`
	PlayerName string  `json:"player_name"`
	ActionType string  `json:"action_type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Timestamp  string  `json:"timestamp"`
}

// GameCreate mirrors the wire shape for POST /games.
type GameCreate struct {
	TournamentName string `json:"tournament_name"`
	OpponentName   string `json:"opponent_name"`
	Date           string `json:"date"`
}

// Game mirrors the wire shape of a game read.
type Game struct {
	ID             string `json:"id"`
	TournamentName string `json:"tournament_name"`
	OpponentName   string `json:"opponent_name"`
}

// PlayerStats mirrors the wire shape of an aggregated stats record.
type PlayerStats struct {
	PlayerName     string  `json:"player_name"`
	Touches        int     `json:"touches"`
	ThrowingYards  float64 `json:"throwing_yards"`
	ReceivingYards float64 `json:"receiving_yards"`
	Turnovers      int     `json:"turnovers"`
}

// AckResponse mirrors the response from event submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds seeding run statistics.
type Stats struct {
	EventsGenerated  int
	EventsSubmitted  int
	EventsSuccessful int
	EventsDuplicate  int
	EventsFailed     int
	PlayersCredited  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
