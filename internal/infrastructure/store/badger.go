package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/neuralsearch/backend/internal/domain"
	"github.com/neuralsearch/backend/pkg/log"
)

// Key prefixes. Each shop has a full model document and a small summary
// document so listings never load embeddings.
const (
	modelKeyPrefix   = "model:"
	summaryKeyPrefix = "summary:"
)

// BadgerStore persists tenant indexes in BadgerDB so trained models survive
// restarts. A read-through cache holds deserialized indexes; Put updates the
// database first and then swaps the cached pointer, so readers see either the
// old or the new index.
type BadgerStore struct {
	db *badger.DB

	mu    sync.RWMutex
	cache map[string]*domain.TenantIndex
}

// badgerLoggerAdapter routes badger's internal logging through pkg/log.
type badgerLoggerAdapter struct{}

var _ badger.Logger = badgerLoggerAdapter{}

func (badgerLoggerAdapter) Errorf(msg string, items ...interface{})   { log.Errorf(msg, items...) }
func (badgerLoggerAdapter) Warningf(msg string, items ...interface{}) { log.Warnf(msg, items...) }
func (badgerLoggerAdapter) Infof(msg string, items ...interface{})    { log.Infof(msg, items...) }
func (badgerLoggerAdapter) Debugf(msg string, items ...interface{})   { log.Infof(msg, items...) }

// OpenBadgerStore opens (and creates if needed) a BadgerDB-backed store at
// the given path. inMemory is for tests.
func OpenBadgerStore(path string, inMemory bool) (*BadgerStore, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = badgerLoggerAdapter{}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}

	return &BadgerStore{
		db:    db,
		cache: make(map[string]*domain.TenantIndex),
	}, nil
}

// Put writes the model and summary documents in one transaction, then swaps
// the cached index.
func (s *BadgerStore) Put(ctx context.Context, index *domain.TenantIndex) error {
	modelBytes, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encoding index for shop %s: %w", index.ShopID, err)
	}
	summary := index.Summary()
	summaryBytes, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary for shop %s: %w", index.ShopID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(modelKey(index.ShopID), modelBytes); err != nil {
			return err
		}
		return txn.Set(summaryKey(index.ShopID), summaryBytes)
	})
	if err != nil {
		return fmt.Errorf("writing index for shop %s: %w", index.ShopID, err)
	}

	s.mu.Lock()
	s.cache[index.ShopID] = index
	s.mu.Unlock()
	return nil
}

// Get returns the current index for the shop, reading through the cache.
func (s *BadgerStore) Get(ctx context.Context, shopID string) (*domain.TenantIndex, error) {
	s.mu.RLock()
	index, ok := s.cache[shopID]
	s.mu.RUnlock()
	if ok {
		return index, nil
	}

	var loaded domain.TenantIndex
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(shopID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &loaded)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, domain.ErrNotTrained
	}
	if err != nil {
		return nil, fmt.Errorf("reading index for shop %s: %w", shopID, err)
	}

	s.mu.Lock()
	// A concurrent Put wins over the loaded copy.
	if cached, ok := s.cache[shopID]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.cache[shopID] = &loaded
	s.mu.Unlock()
	return &loaded, nil
}

// Summary returns the registry entry for the shop without loading embeddings.
func (s *BadgerStore) Summary(ctx context.Context, shopID string) (*domain.ShopSummary, error) {
	var summary domain.ShopSummary
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(summaryKey(shopID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &summary)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, domain.ErrNotTrained
	}
	if err != nil {
		return nil, fmt.Errorf("reading summary for shop %s: %w", shopID, err)
	}
	return &summary, nil
}

// List scans the summary keyspace and returns every trained shop ordered by
// shop_id.
func (s *BadgerStore) List(ctx context.Context) ([]domain.ShopSummary, error) {
	var summaries []domain.ShopSummary
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(summaryKeyPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var summary domain.ShopSummary
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &summary)
			})
			if err != nil {
				shopID := strings.TrimPrefix(string(iter.Item().Key()), summaryKeyPrefix)
				log.Warnw("skipping unreadable shop summary", "shop_id", shopID, "error", err)
				continue
			}
			summaries = append(summaries, summary)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing shops: %w", err)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ShopID < summaries[j].ShopID
	})
	if summaries == nil {
		summaries = []domain.ShopSummary{}
	}
	return summaries, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func modelKey(shopID string) []byte {
	return []byte(modelKeyPrefix + shopID)
}

func summaryKey(shopID string) []byte {
	return []byte(summaryKeyPrefix + shopID)
}
