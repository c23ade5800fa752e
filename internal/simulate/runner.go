// Package simulate generates plausible game event sequences and seeds a
// running service with them over HTTP.
package simulate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/huckstats/huck/pkg/logger"
)

// How long to wait for the async ingest pipeline to drain before reading
// back aggregated stats.
const drainWait = 2 * time.Second

// Run seeds one game: creates it, generates and submits its events, then
// reads back the aggregated statistics.
func Run(ctx context.Context, config *Config) error {
	log := logger.Get().Named("seed")
	stats := &Stats{StartTime: time.Now()}

	client := newHTTPClient(config.Timeout)

	// Create the game to seed.
	var game Game
	status, err := client.PostJSON(ctx, config.BaseURL+"/games", GameCreate{
		TournamentName: config.Tourney,
		OpponentName:   config.Opponent,
		Date:           time.Now().UTC().Format(time.RFC3339),
	}, &game)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("create game: unexpected status %d", status)
	}
	log.Info(ctx, "created game",
		logger.String("gameID", game.ID),
		logger.String("tournament", game.TournamentName),
	)

	// Generate and submit the event stream.
	events := generateGameEvents(ctx, game.ID, config.Points, stats)
	if err := submitEvents(ctx, config, client, events, stats); err != nil {
		return fmt.Errorf("submit events: %w", err)
	}

	// Let the workers drain the queue, then read back the aggregation.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(drainWait):
	}

	var result []PlayerStats
	status, err = client.GetJSON(ctx, config.BaseURL+"/games/"+game.ID+"/stats", &result)
	if err != nil {
		return fmt.Errorf("fetch game stats: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("fetch game stats: unexpected status %d", status)
	}
	stats.PlayersCredited = len(result)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report(ctx, stats, result)
	return nil
}

func report(ctx context.Context, stats *Stats, result []PlayerStats) {
	log := logger.Get().Named("seed")
	log.Info(ctx, "seeding run finished",
		logger.Int("generated", stats.EventsGenerated),
		logger.Int("submitted", stats.EventsSubmitted),
		logger.Int("successful", stats.EventsSuccessful),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("failed", stats.EventsFailed),
		logger.Int("playersCredited", stats.PlayersCredited),
		logger.Any("duration", stats.Duration.Round(time.Millisecond)),
	)
	for _, ps := range result {
		log.Info(ctx, "player line",
			logger.String("player", ps.PlayerName),
			logger.Int("touches", ps.Touches),
			logger.Float64("throwingYards", ps.ThrowingYards),
			logger.Float64("receivingYards", ps.ReceivingYards),
			logger.Int("turnovers", ps.Turnovers),
		)
	}
}
