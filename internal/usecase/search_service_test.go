package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuralsearch/backend/internal/domain"
	"github.com/neuralsearch/backend/internal/infrastructure/embedding/mock"
	"github.com/neuralsearch/backend/internal/infrastructure/store"
)

// seedIndex publishes an index whose embeddings come from the deterministic
// mock, so a query equal to a product's search text ranks that product first.
func seedIndex(t *testing.T, memStore *store.MemoryStore, shopID string, products []domain.Product) {
	t.Helper()
	embeddings := make([][]float32, len(products))
	for i, p := range products {
		embeddings[i] = mock.DeterministicVector(p.SearchText())
	}
	err := memStore.Put(context.Background(), &domain.TenantIndex{
		ShopID:     shopID,
		Products:   products,
		Embeddings: embeddings,
		TrainedAt:  time.Now().Unix(),
	})
	require.NoError(t, err)
}

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Samsung Galaxy A54", Model: "SM-A546", Description: "Smartphone", Category: "Phones"},
		{ID: "2", Name: "Lenovo IdeaPad 3", Model: "82H8", Description: "Laptop 15.6 inch", Category: "Laptops"},
		{ID: "3", Name: "Apple iPhone 15", Model: "A3090", Description: "Smartphone", Category: "Phones"},
	}
}

func newTestSearchService(memStore *store.MemoryStore, embedder domain.Embedder, maxLimit int) *SearchService {
	ranker := NewRanker(RankerConfig{NeuralWeight: 0.7, FuzzyWeight: 0.3, DefaultLimit: 5})
	return NewSearchService(memStore, embedder, ranker, maxLimit)
}

func TestSearch(t *testing.T) {
	t.Run("exact product text ranks that product first", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		catalog := testCatalog()
		seedIndex(t, memStore, "shop1", catalog)
		service := newTestSearchService(memStore, mock.NewEmbedder(), 50)

		results, err := service.Search(context.Background(), "shop1", catalog[1].SearchText(), 3)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "2", results[0].Product.ID)
		assert.InDelta(t, 1.0, results[0].NeuralScore, 1e-5)
		assert.InDelta(t, 1.0, results[0].FuzzyScore, 1e-9)
	})

	t.Run("scores stay within bounds and sorted", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedIndex(t, memStore, "shop1", testCatalog())
		service := newTestSearchService(memStore, mock.NewEmbedder(), 50)

		results, err := service.Search(context.Background(), "shop1", "smartphone", 10)
		require.NoError(t, err)
		for i, r := range results {
			assert.GreaterOrEqual(t, r.Score, 0.0)
			assert.LessOrEqual(t, r.Score, 1.0)
			if i > 0 {
				assert.LessOrEqual(t, r.Score, results[i-1].Score)
			}
		}
	})

	t.Run("repeated query returns identical results", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedIndex(t, memStore, "shop1", testCatalog())
		service := newTestSearchService(memStore, mock.NewEmbedder(), 50)

		first, err := service.Search(context.Background(), "shop1", "laptop", 5)
		require.NoError(t, err)
		second, err := service.Search(context.Background(), "shop1", "laptop", 5)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("limit caps the result count", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedIndex(t, memStore, "shop1", testCatalog())
		service := newTestSearchService(memStore, mock.NewEmbedder(), 50)

		results, err := service.Search(context.Background(), "shop1", "smartphone", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("caller limit is clamped to the service maximum", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedIndex(t, memStore, "shop1", testCatalog())
		service := newTestSearchService(memStore, mock.NewEmbedder(), 2)

		results, err := service.Search(context.Background(), "shop1", "smartphone", 100)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), 2)
	})

	t.Run("untrained shop returns NotTrained", func(t *testing.T) {
		service := newTestSearchService(store.NewMemoryStore(), mock.NewEmbedder(), 50)

		_, err := service.Search(context.Background(), "ghost", "laptop", 5)
		assert.ErrorIs(t, err, domain.ErrNotTrained)
	})

	t.Run("invalid shop id is rejected before any lookup", func(t *testing.T) {
		service := newTestSearchService(store.NewMemoryStore(), mock.NewEmbedder(), 50)

		_, err := service.Search(context.Background(), "shop/../etc", "laptop", 5)
		assert.ErrorIs(t, err, domain.ErrInvalidShopID)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedIndex(t, memStore, "shop1", testCatalog())
		service := newTestSearchService(memStore, mock.NewEmbedder(), 50)

		_, err := service.Search(context.Background(), "shop1", "", 5)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("embedder failure surfaces as EmbedderFailure", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedIndex(t, memStore, "shop1", testCatalog())
		embedder := mock.NewEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("upstream 503")
		}
		service := newTestSearchService(memStore, embedder, 50)

		_, err := service.Search(context.Background(), "shop1", "laptop", 5)
		assert.ErrorIs(t, err, domain.ErrEmbedderFailure)
	})
}

func TestStatus(t *testing.T) {
	t.Run("trained shop reports its summary", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedIndex(t, memStore, "shop1", testCatalog())
		service := newTestSearchService(memStore, mock.NewEmbedder(), 50)

		summary, err := service.Status(context.Background(), "shop1")
		require.NoError(t, err)
		assert.Equal(t, "shop1", summary.ShopID)
		assert.Equal(t, 3, summary.ProductsCount)
		assert.Greater(t, summary.TrainedAt, int64(0))
	})

	t.Run("untrained shop returns NotTrained", func(t *testing.T) {
		service := newTestSearchService(store.NewMemoryStore(), mock.NewEmbedder(), 50)

		_, err := service.Status(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrNotTrained)
	})

	t.Run("invalid shop id is rejected", func(t *testing.T) {
		service := newTestSearchService(store.NewMemoryStore(), mock.NewEmbedder(), 50)

		_, err := service.Status(context.Background(), "bad id")
		assert.ErrorIs(t, err, domain.ErrInvalidShopID)
	})
}

func TestListShops(t *testing.T) {
	t.Run("returns every trained shop sorted by id", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedIndex(t, memStore, "zeta", testCatalog()[:1])
		seedIndex(t, memStore, "alpha", testCatalog())
		service := newTestSearchService(memStore, mock.NewEmbedder(), 50)

		summaries, err := service.ListShops(context.Background())
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "alpha", summaries[0].ShopID)
		assert.Equal(t, 3, summaries[0].ProductsCount)
		assert.Equal(t, "zeta", summaries[1].ShopID)
	})

	t.Run("no trained shops yields an empty list", func(t *testing.T) {
		service := newTestSearchService(store.NewMemoryStore(), mock.NewEmbedder(), 50)

		summaries, err := service.ListShops(context.Background())
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})
}
