// Package store persists the favorite stops of each API key in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver
	"otpviewer.org/internal/appconf"
	"otpviewer.org/internal/clock"
	"otpviewer.org/internal/logging"
)

//go:embed schema.sql
var ddl string

const memoryPath = ":memory:"

type Config struct {
	DBPath string
	Env    appconf.Environment
	Clock  clock.Clock
}

// FavoriteStop is a stop bookmarked from the stop viewer.
type FavoriteStop struct {
	StopID    string    `json:"stopId" validate:"required"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	Lat       float64   `json:"lat" validate:"gte=-90,lte=90"`
	Lon       float64   `json:"lon" validate:"gte=-180,lte=180"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	db    *sql.DB
	path  string
	clock clock.Clock
}

// Open creates or opens the database at config.DBPath and applies the schema.
// In the test environment only in-memory databases are accepted.
func Open(ctx context.Context, config Config) (*Store, error) {
	if config.DBPath == "" {
		config.DBPath = memoryPath
	}
	if config.Env == appconf.Test && config.DBPath != memoryPath {
		return nil, fmt.Errorf("test database must use in-memory storage, got path: %s", config.DBPath)
	}
	if config.Clock == nil {
		config.Clock = clock.RealClock{}
	}

	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return nil, err
	}
	configureConnectionPool(db, config.DBPath)

	if err := configurePragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error configuring SQLite: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	return &Store{db: db, path: config.DBPath, clock: config.Clock}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", stmt, err)
		}
	}
	return nil
}

func configurePragmas(ctx context.Context, db *sql.DB) error {
	logger := slog.Default().With(slog.String("component", "favorites_store"))
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			logging.LogError(logger, "failed to apply pragma", err, slog.String("pragma", pragma))
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// Each connection to ":memory:" opens its own database, so those are limited
// to a single connection.
func configureConnectionPool(db *sql.DB, path string) {
	if path == memoryPath {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Path() string { return s.path }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddFavorite stores or refreshes a favorite stop of apiKey.
func (s *Store) AddFavorite(ctx context.Context, apiKey string, fav FavoriteStop) (FavoriteStop, error) {
	if fav.StopID == "" {
		return FavoriteStop{}, errors.New("stop id is required")
	}
	fav.CreatedAt = s.clock.Now().UTC().Truncate(time.Second)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorite_stops (api_key, stop_id, name, code, lat, lon, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (api_key, stop_id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			lat = excluded.lat,
			lon = excluded.lon`,
		apiKey, fav.StopID, fav.Name, fav.Code, fav.Lat, fav.Lon, fav.CreatedAt.Unix())
	if err != nil {
		return FavoriteStop{}, fmt.Errorf("error saving favorite stop: %w", err)
	}
	return fav, nil
}

// RemoveFavorite deletes a favorite stop and reports whether it existed.
func (s *Store) RemoveFavorite(ctx context.Context, apiKey, stopID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM favorite_stops WHERE api_key = ? AND stop_id = ?`, apiKey, stopID)
	if err != nil {
		return false, fmt.Errorf("error deleting favorite stop: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFavorites returns the favorite stops of apiKey, oldest first.
func (s *Store) ListFavorites(ctx context.Context, apiKey string) ([]FavoriteStop, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stop_id, name, code, lat, lon, created_at
		FROM favorite_stops
		WHERE api_key = ?
		ORDER BY created_at, stop_id`, apiKey)
	if err != nil {
		return nil, fmt.Errorf("error listing favorite stops: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows,
		slog.Default().With(slog.String("component", "favorites_store")),
		"database_rows")

	favorites := []FavoriteStop{}
	for rows.Next() {
		var fav FavoriteStop
		var created int64
		if err := rows.Scan(&fav.StopID, &fav.Name, &fav.Code, &fav.Lat, &fav.Lon, &created); err != nil {
			return nil, err
		}
		fav.CreatedAt = time.Unix(created, 0).UTC()
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}
