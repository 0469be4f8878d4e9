package domain

import "context"

// WatermarkStore persists the serial of the most recently processed listing
// per feed, so repeated runs stop at already-seen items. Comparison against
// a stored watermark is exact string equality. Get returns ErrNotFound when
// no watermark has been recorded for the feed.
type WatermarkStore interface {
	Get(ctx context.Context, feed string) (string, error)
	Set(ctx context.Context, feed, serial string) error
}

// SignalStore records emitted signals for audit.
type SignalStore interface {
	RecordArbitrage(ctx context.Context, sig ArbitrageSignal) error
	RecordOffer(ctx context.Context, sig OfferSignal) error
}
