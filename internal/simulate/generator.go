package simulate

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/huckstats/huck/pkg/logger"
)

// Field geometry in yards. Endzone-to-endzone play runs along y.
const (
	fieldWidth    = 40.0
	brickMarkY    = 20.0
	endzoneFrontY = 90.0
	fieldLengthY  = 110.0
)

// Hop and sequence shape constants.
const (
	minHopsPerPossession = 2
	maxHopsPerPossession = 7
	turnoverChancePct    = 30
	secondsBetweenPlays  = 4
	randomFloatDivisor   = 1000000
)

var rosterNames = []string{
	"Avery", "Dex", "Mika", "Rowan", "Sam", "Tatum",
	"Quinn", "Jules", "Noor", "Kai", "Priya", "Lenny",
	"Sage", "Theo",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, limit).
func getRandomInt(limit int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	return int(n.Int64())
}

// pickPlayer picks a roster name different from exclude.
func pickPlayer(exclude string) string {
	for {
		name := rosterNames[getRandomInt(len(rosterNames))]
		if name != exclude {
			return name
		}
	}
}

// generateGameEvents builds plausible point sequences for a game: each point
// opens with a pull, then alternating possessions of short completed throws
// until one possession reaches the endzone and scores.
func generateGameEvents(ctx context.Context, gameID string, points int, stats *Stats) []Event {
	log := logger.Get().Named("generator")
	log.Info(ctx, "generating game events",
		logger.String("gameID", gameID),
		logger.Int("points", points),
	)

	clock := time.Now().UTC().Add(-time.Duration(points) * 2 * time.Minute)
	events := make([]Event, 0, points*maxHopsPerPossession*2)

	emit := func(player, action string, x, y float64) {
		clock = clock.Add(time.Duration(1+getRandomInt(secondsBetweenPlays)) * time.Second)
		events = append(events, Event{
			EventID:    uuid.NewString(),
			GameID:     gameID,
			PlayerName: player,
			ActionType: action,
			X:          clampX(x),
			Y:          clampY(y),
			Timestamp:  clock.Format(time.RFC3339),
		})
	}

	for p := 0; p < points; p++ {
		// Pull from our endzone toward the receiving team.
		puller := rosterNames[getRandomInt(len(rosterNames))]
		x := fieldWidth * getRandomFloat()
		y := brickMarkY + 10*getRandomFloat()
		emit(puller, "pull", fieldWidth/2, 2)

		holder := pickPlayer(puller)
		scored := false
		for !scored {
			hops := minHopsPerPossession + getRandomInt(maxHopsPerPossession-minHopsPerPossession+1)
			for h := 0; h < hops; h++ {
				// Advance down field with some lateral scatter.
				x += (getRandomFloat() - 0.5) * 20
				y += 5 + getRandomFloat()*20
				receiver := pickPlayer(holder)
				if y >= endzoneFrontY {
					emit(receiver, "catch", x, y)
					emit(receiver, "goal", x, y)
					scored = true
					break
				}
				emit(receiver, "catch", x, y)
				holder = receiver
			}
			if scored {
				break
			}
			// Possession ends without a score some of the time.
			if getRandomInt(100) < turnoverChancePct {
				emit(holder, "turnover", x, y)
				holder = pickPlayer(holder)
				// Turnovers move play backward for the new offense.
				y -= 10 + getRandomFloat()*15
				if y < 5 {
					y = 5
				}
			}
		}
	}

	stats.EventsGenerated = len(events)
	log.Info(ctx, "generated events successfully", logger.Int("count", len(events)))
	return events
}

func clampX(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > fieldWidth {
		return fieldWidth
	}
	return x
}

func clampY(y float64) float64 {
	if y < 0 {
		return 0
	}
	if y > fieldLengthY {
		return fieldLengthY
	}
	return y
}
