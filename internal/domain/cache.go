package domain

import "context"

// BundleCache is the read-through reconciliation cache keyed by listing
// serial. Get returns ErrNotFound on a miss or expired entry. The cache is
// advisory: implementations may fail, and callers must degrade to a live
// catalog fetch rather than abort.
type BundleCache interface {
	Get(ctx context.Context, serial string) (PricingBundle, error)
	Set(ctx context.Context, serial string, bundle PricingBundle) error
}
