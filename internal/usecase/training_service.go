package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/neuralsearch/backend/internal/domain"
	"github.com/neuralsearch/backend/pkg/log"
)

// Default training bounds
const (
	defaultTrainingTimeout = 120 * time.Second
	defaultBatchSize       = 64
	defaultPoolSize        = 4
)

// TrainingServiceConfig holds configuration for the training service
type TrainingServiceConfig struct {
	Timeout   time.Duration
	BatchSize int
	PoolSize  int
}

// TrainingService builds per-shop search indexes from product feeds.
// Training is synchronous: Train returns once the new index is live.
// At most one training run proceeds per shop at a time; a second concurrent
// request for the same shop is rejected with ErrTrainingInProgress.
// Different shops train independently and in parallel.
type TrainingService struct {
	store     domain.IndexStore
	embedder  domain.Embedder
	pool      *ants.Pool
	timeout   time.Duration
	batchSize int

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewTrainingService creates a training service. The worker pool bounds how
// many embedding batches run concurrently across all tenants.
func NewTrainingService(store domain.IndexStore, embedder domain.Embedder, config TrainingServiceConfig) (*TrainingService, error) {
	if store == nil {
		return nil, errors.New("index store required")
	}
	if embedder == nil {
		return nil, errors.New("embedder required")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTrainingTimeout
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	poolSize := config.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &TrainingService{
		store:     store,
		embedder:  embedder,
		pool:      pool,
		timeout:   timeout,
		batchSize: batchSize,
		inFlight:  make(map[string]bool),
	}, nil
}

// Train parses the feed, encodes the catalog and swaps in a new index for
// the shop. On any failure the shop keeps its previous index (or stays
// untrained); the swap is the last step.
func (s *TrainingService) Train(ctx context.Context, shopID, feed string) (*domain.ShopSummary, error) {
	if err := domain.ValidateShopID(shopID); err != nil {
		return nil, err
	}

	if err := s.acquire(shopID); err != nil {
		return nil, err
	}
	defer s.releaseShop(shopID)

	products, err := ParseCatalog(feed)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	log.Infow("training started", "shop_id", shopID, "products", len(products))

	embeddings, err := s.encodeCatalog(ctx, products)
	if err != nil {
		log.Errorw("training failed", "shop_id", shopID, "error", err)
		return nil, err
	}

	index := &domain.TenantIndex{
		ShopID:     shopID,
		Products:   products,
		Embeddings: embeddings,
		TrainedAt:  time.Now().Unix(),
	}

	if err := s.store.Put(ctx, index); err != nil {
		log.Errorw("index store write failed", "shop_id", shopID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	summary := index.Summary()
	log.Infow("training complete",
		"shop_id", shopID,
		"products", summary.ProductsCount,
		"elapsed", time.Since(started))
	return &summary, nil
}

// encodeCatalog embeds every product's search text, splitting the catalog
// into batches that run on the shared worker pool.
func (s *TrainingService) encodeCatalog(ctx context.Context, products []domain.Product) ([][]float32, error) {
	texts := make([]string, len(products))
	for i, p := range products {
		texts[i] = p.SearchText()
	}

	embeddings := make([][]float32, len(texts))

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error
	recordErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end

		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				recordErr(ctx.Err())
				return
			}
			vectors, err := s.embedder.EmbedTexts(ctx, texts[start:end])
			if err != nil {
				recordErr(err)
				return
			}
			if len(vectors) != end-start {
				recordErr(fmt.Errorf("embedding count mismatch: expected %d, received %d", end-start, len(vectors)))
				return
			}
			copy(embeddings[start:end], vectors)
		})
		if submitErr != nil {
			wg.Done()
			recordErr(submitErr)
		}
	}
	wg.Wait()

	if firstErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", domain.ErrTrainingTimeout, s.timeout)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedderFailure, firstErr)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", domain.ErrTrainingTimeout, s.timeout)
	}

	return embeddings, nil
}

// acquire marks the shop as training, or reports a run already in flight.
func (s *TrainingService) acquire(shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[shopID] {
		return domain.ErrTrainingInProgress
	}
	s.inFlight[shopID] = true
	return nil
}

func (s *TrainingService) releaseShop(shopID string) {
	s.mu.Lock()
	delete(s.inFlight, shopID)
	s.mu.Unlock()
}

// Release shuts down the worker pool. The service must not be used after
// calling Release.
func (s *TrainingService) Release() {
	s.pool.Release()
}
