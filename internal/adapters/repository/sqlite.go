package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huckstats/huck/internal/domain/model"
	"github.com/huckstats/huck/pkg/metrics"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// schema is applied on every Open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS games (
	id                TEXT PRIMARY KEY,
	tournament_name   TEXT NOT NULL,
	opponent_name     TEXT NOT NULL,
	date              INTEGER NOT NULL,
	weather_condition TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS players (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	jersey_number INTEGER NOT NULL DEFAULT 0,
	gender_match  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS points (
	id              TEXT PRIMARY KEY,
	game_id         TEXT NOT NULL REFERENCES games(id),
	score_home      INTEGER NOT NULL DEFAULT 0,
	score_away      INTEGER NOT NULL DEFAULT 0,
	starting_stance TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	game_id     TEXT NOT NULL REFERENCES games(id),
	player_name TEXT NOT NULL,
	action_type TEXT NOT NULL,
	x           REAL NOT NULL,
	y           REAL NOT NULL,
	ts          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_points_game ON points(game_id);
CREATE INDEX IF NOT EXISTS idx_events_game_ts ON events(game_id, ts);
`

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) a SQLite game store at path and applies
// the schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("open store: %w: empty path", ErrNoStorage)
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	// modernc.org/sqlite only honors _pragma=name(value) parameters;
	// the mattn-style _journal_mode/_foreign_keys keys are ignored.
	dsn += "?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// CreateGame inserts a new game record.
func (s *SQLiteStore) CreateGame(ctx context.Context, g model.Game) error {
	start := time.Now()
	defer observeWrite(start)

	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("create game: missing id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, tournament_name, opponent_name, date, weather_condition)
		 VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.TournamentName, g.OpponentName, toMillis(g.Date), g.WeatherCondition)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("create game %s: %w", g.ID, ErrConflict)
		}
		return fmt.Errorf("create game %s: %w", g.ID, err)
	}
	return nil
}

// GetGame returns a game by id.
func (s *SQLiteStore) GetGame(ctx context.Context, id string) (model.Game, error) {
	start := time.Now()
	defer observeQuery(start)

	var g model.Game
	var date int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tournament_name, opponent_name, date, weather_condition
		 FROM games WHERE id = ?`, id).
		Scan(&g.ID, &g.TournamentName, &g.OpponentName, &date, &g.WeatherCondition)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Game{}, fmt.Errorf("get game %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Game{}, fmt.Errorf("get game %s: %w", id, err)
	}
	g.Date = fromMillis(date)
	return g, nil
}

// ListGames returns all games, most recent first.
func (s *SQLiteStore) ListGames(ctx context.Context) ([]model.Game, error) {
	start := time.Now()
	defer observeQuery(start)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tournament_name, opponent_name, date, weather_condition
		 FROM games ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		var g model.Game
		var date int64
		if err := rows.Scan(&g.ID, &g.TournamentName, &g.OpponentName, &date, &g.WeatherCondition); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Date = fromMillis(date)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// CreatePlayer inserts a roster entry.
func (s *SQLiteStore) CreatePlayer(ctx context.Context, p model.Player) error {
	start := time.Now()
	defer observeWrite(start)

	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("create player: missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("create player %s: missing name", p.ID)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, jersey_number, gender_match) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.JerseyNumber, p.GenderMatch)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("create player %s: %w", p.ID, ErrConflict)
		}
		return fmt.Errorf("create player %s: %w", p.ID, err)
	}
	return nil
}

// ListPlayers returns the roster ordered by name.
func (s *SQLiteStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	start := time.Now()
	defer observeQuery(start)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, jersey_number, gender_match FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.JerseyNumber, &p.GenderMatch); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// CreatePoint inserts a point within a game.
func (s *SQLiteStore) CreatePoint(ctx context.Context, p model.Point) error {
	start := time.Now()
	defer observeWrite(start)

	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("create point: missing id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO points (id, game_id, score_home, score_away, starting_stance)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.GameID, p.ScoreHome, p.ScoreAway, p.StartingStance)
	if err != nil {
		if isForeignKey(err) {
			return fmt.Errorf("create point %s: game %s: %w", p.ID, p.GameID, ErrNotFound)
		}
		if isConstraint(err) {
			return fmt.Errorf("create point %s: %w", p.ID, ErrConflict)
		}
		return fmt.Errorf("create point %s: %w", p.ID, err)
	}
	return nil
}

// ListPointsByGame returns a game's points in insertion order.
func (s *SQLiteStore) ListPointsByGame(ctx context.Context, gameID string) ([]model.Point, error) {
	start := time.Now()
	defer observeQuery(start)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, score_home, score_away, starting_stance
		 FROM points WHERE game_id = ? ORDER BY rowid`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	defer rows.Close()

	points := []model.Point{}
	for rows.Next() {
		var p model.Point
		if err := rows.Scan(&p.ID, &p.GameID, &p.ScoreHome, &p.ScoreAway, &p.StartingStance); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	return points, nil
}

// AppendEvent appends one event to a game's log.
func (s *SQLiteStore) AppendEvent(ctx context.Context, e model.Event) error {
	start := time.Now()
	defer observeWrite(start)

	if strings.TrimSpace(e.EventID) == "" {
		return fmt.Errorf("append event: missing event id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, game_id, player_name, action_type, x, y, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.EventID, e.GameID, e.PlayerName, e.Action.String(),
		e.Position.X, e.Position.Y, toMillis(e.Timestamp))
	if err != nil {
		if isForeignKey(err) {
			return fmt.Errorf("append event %s: game %s: %w", e.EventID, e.GameID, ErrNotFound)
		}
		if isConstraint(err) {
			return fmt.Errorf("append event %s: %w", e.EventID, ErrConflict)
		}
		return fmt.Errorf("append event %s: %w", e.EventID, err)
	}
	return nil
}

// ListEventsByGame returns a game's events ordered by timestamp. Ties
// preserve insertion order via the rowid tiebreak, which keeps the
// aggregation deterministic across reads.
func (s *SQLiteStore) ListEventsByGame(ctx context.Context, gameID string) ([]model.Event, error) {
	start := time.Now()
	defer observeQuery(start)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, player_name, action_type, x, y, ts
		 FROM events WHERE game_id = ? ORDER BY ts, rowid`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		var action string
		var ts int64
		if err := rows.Scan(&e.EventID, &e.GameID, &e.PlayerName, &action,
			&e.Position.X, &e.Position.Y, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Action = model.ParseAction(action)
		e.Timestamp = fromMillis(ts)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// CountGames reports the number of stored games.
func (s *SQLiteStore) CountGames(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

// CountEvents reports the number of stored events.
func (s *SQLiteStore) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func observeWrite(start time.Time) {
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
}

func observeQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
}

// isConstraint reports whether err is a primary-key or unique violation.
func isConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}

// isForeignKey reports whether err is a foreign-key violation.
func isForeignKey(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}
