package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardhawk/internal/domain"
)

// SignalStore implements domain.SignalStore using PostgreSQL. Both signal
// kinds share one table; compare_price holds the catalog price for
// arbitrage rows and the best offer for offer rows.
type SignalStore struct {
	pool *pgxpool.Pool
}

// NewSignalStore creates a new SignalStore backed by the given pool.
func NewSignalStore(pool *pgxpool.Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

const insertSignal = `
	INSERT INTO signals (
		id, kind, serial, card_name, listing_url, catalog_url,
		listing_price, compare_price, margin_pct, volume, detected_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`

// RecordArbitrage persists an emitted arbitrage signal.
func (s *SignalStore) RecordArbitrage(ctx context.Context, sig domain.ArbitrageSignal) error {
	_, err := s.pool.Exec(ctx, insertSignal,
		uuid.NewString(), "arbitrage", sig.Listing.Serial, sig.CardName,
		sig.ListingURL, sig.CatalogURL,
		sig.ListingPrice, sig.CatalogPrice, sig.MarginPct, sig.Volume,
	)
	if err != nil {
		return fmt.Errorf("postgres: record arbitrage signal %s: %w", sig.Listing.Serial, err)
	}
	return nil
}

// RecordOffer persists an emitted offer signal.
func (s *SignalStore) RecordOffer(ctx context.Context, sig domain.OfferSignal) error {
	_, err := s.pool.Exec(ctx, insertSignal,
		uuid.NewString(), "offer", sig.Listing.Serial, sig.CardName,
		sig.ListingURL, nil,
		sig.ListingPrice, sig.BestOfferPrice, sig.MarginPct, nil,
	)
	if err != nil {
		return fmt.Errorf("postgres: record offer signal %s: %w", sig.Listing.Serial, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SignalStore = (*SignalStore)(nil)
