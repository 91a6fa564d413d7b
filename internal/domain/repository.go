package domain

import "context"

// IndexStore holds one trained index per shop. Put replaces any existing
// index for the shop atomically: a concurrent Get observes either the old
// index or the new one, never a mix.
type IndexStore interface {
	Put(ctx context.Context, index *TenantIndex) error

	// Get returns the current index for the shop, or ErrNotTrained.
	Get(ctx context.Context, shopID string) (*TenantIndex, error)

	// Summary returns the registry entry for the shop without loading the
	// full index, or ErrNotTrained.
	Summary(ctx context.Context, shopID string) (*ShopSummary, error)

	// List returns registry entries for every trained shop, ordered by shop_id.
	List(ctx context.Context) ([]ShopSummary, error)

	Close() error
}

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be safe for concurrent use and deterministic for
// identical input.
type Embedder interface {
	// EmbedText generates an embedding for a single query string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for a batch of texts, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
