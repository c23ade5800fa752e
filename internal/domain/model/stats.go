package model

// PlayerStats is the finalized per-player output of one aggregation pass.
// Yardage fields are rounded to one decimal place at emission; counters
// stay exact integers.
type PlayerStats struct {
	PlayerName     string  `json:"player_name"`
	Touches        int     `json:"touches"`
	ThrowingYards  float64 `json:"throwing_yards"`
	ReceivingYards float64 `json:"receiving_yards"`
	Turnovers      int     `json:"turnovers"`
}
