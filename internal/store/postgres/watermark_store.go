package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardhawk/internal/domain"
)

// WatermarkStore implements domain.WatermarkStore using PostgreSQL.
// Watermarks are stored as opaque strings so run-to-run comparison stays
// exact string equality.
type WatermarkStore struct {
	pool *pgxpool.Pool
}

// NewWatermarkStore creates a new WatermarkStore backed by the given pool.
func NewWatermarkStore(pool *pgxpool.Pool) *WatermarkStore {
	return &WatermarkStore{pool: pool}
}

// Get returns the last recorded serial for a feed, or domain.ErrNotFound
// when the feed has never been scanned.
func (s *WatermarkStore) Get(ctx context.Context, feed string) (string, error) {
	const query = `SELECT serial FROM watermarks WHERE feed = $1`

	var serial string
	err := s.pool.QueryRow(ctx, query, feed).Scan(&serial)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("postgres: get watermark %s: %w", feed, err)
	}
	return serial, nil
}

// Set records the most recently processed serial for a feed.
func (s *WatermarkStore) Set(ctx context.Context, feed, serial string) error {
	const query = `
		INSERT INTO watermarks (feed, serial, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (feed) DO UPDATE SET
			serial     = EXCLUDED.serial,
			updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, feed, serial); err != nil {
		return fmt.Errorf("postgres: set watermark %s: %w", feed, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.WatermarkStore = (*WatermarkStore)(nil)
