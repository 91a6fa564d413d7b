package usecase

import (
	"context"
	"fmt"

	"github.com/neuralsearch/backend/internal/domain"
)

// SearchService answers search, status and shop-listing queries against the
// trained per-shop indexes. Searches are read-only and run fully in parallel;
// a retrain in flight never affects a search already reading the old index.
type SearchService struct {
	store    domain.IndexStore
	embedder domain.Embedder
	ranker   *Ranker
	maxLimit int
}

// NewSearchService creates a search service. maxLimit caps caller-supplied
// result limits; zero or negative means no cap.
func NewSearchService(store domain.IndexStore, embedder domain.Embedder, ranker *Ranker, maxLimit int) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
		ranker:   ranker,
		maxLimit: maxLimit,
	}
}

// Search ranks the shop's catalog against the query and returns the top
// results. An empty result list is a valid outcome, not an error; searching
// a shop with no trained index returns domain.ErrNotTrained.
func (s *SearchService) Search(ctx context.Context, shopID, query string, limit int) ([]domain.SearchResult, error) {
	if err := domain.ValidateShopID(shopID); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}

	index, err := s.store.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}

	queryEmbedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedderFailure, err)
	}

	fuzzyScores := make([]float64, len(index.Products))
	for i, product := range index.Products {
		fuzzyScores[i] = FuzzyScore(query, product)
	}

	return s.ranker.Rank(queryEmbedding, index, fuzzyScores, limit), nil
}

// Status reports whether the shop has a trained index and, if so, its size
// and training time.
func (s *SearchService) Status(ctx context.Context, shopID string) (*domain.ShopSummary, error) {
	if err := domain.ValidateShopID(shopID); err != nil {
		return nil, err
	}
	return s.store.Summary(ctx, shopID)
}

// ListShops returns the registry entry for every trained shop.
func (s *SearchService) ListShops(ctx context.Context) ([]domain.ShopSummary, error) {
	return s.store.List(ctx)
}
