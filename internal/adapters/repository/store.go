// Package repository defines the game store interface and errors.
package repository

import (
	"context"

	"github.com/huckstats/huck/internal/domain/model"
)

// Store provides read/write access to recorded games, rosters, points,
// and event logs. Implementations must be safe for concurrent use.
type Store interface {
	// CreateGame inserts a new game record.
	CreateGame(ctx context.Context, g model.Game) error
	// GetGame returns a game by id. Returns ErrNotFound if unknown.
	GetGame(ctx context.Context, id string) (model.Game, error)
	// ListGames returns all games, most recent first.
	ListGames(ctx context.Context) ([]model.Game, error)

	// CreatePlayer inserts a roster entry.
	CreatePlayer(ctx context.Context, p model.Player) error
	// ListPlayers returns the full roster ordered by name.
	ListPlayers(ctx context.Context) ([]model.Player, error)

	// CreatePoint inserts a point within a game.
	CreatePoint(ctx context.Context, p model.Point) error
	// ListPointsByGame returns a game's points in insertion order.
	ListPointsByGame(ctx context.Context, gameID string) ([]model.Point, error)

	// AppendEvent appends one event to a game's log. The referenced game
	// must exist.
	AppendEvent(ctx context.Context, e model.Event) error
	// ListEventsByGame returns a game's events ordered by timestamp.
	ListEventsByGame(ctx context.Context, gameID string) ([]model.Event, error)

	// CountGames and CountEvents report store sizes for monitoring.
	CountGames(ctx context.Context) (int, error)
	CountEvents(ctx context.Context) (int, error)

	// Close releases the underlying database handle.
	Close() error
}
