package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neuralsearch/backend/config"
	httpDelivery "github.com/neuralsearch/backend/internal/delivery/http"
	"github.com/neuralsearch/backend/internal/domain"
	"github.com/neuralsearch/backend/internal/infrastructure/embedding"
	"github.com/neuralsearch/backend/internal/infrastructure/store"
	"github.com/neuralsearch/backend/internal/usecase"
	"github.com/neuralsearch/backend/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Init(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	log.Infof("Starting neural-search-api")
	log.Infof("Environment: %s", cfg.Server.Environment)
	log.Infof("Storage: %s", cfg.Storage.Type)
	log.Infof("Embedding model: %s via %s", cfg.Embedding.Model, cfg.Embedding.BaseURL)

	// Initialize infrastructure dependencies
	var indexStore domain.IndexStore
	switch cfg.Storage.Type {
	case "badger":
		badgerStore, err := store.OpenBadgerStore(cfg.Storage.Path, false)
		if err != nil {
			log.Fatalf("Failed to open index store: %v", err)
		}
		indexStore = badgerStore
	default:
		indexStore = store.NewMemoryStore()
	}
	defer indexStore.Close()

	embedder, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	// Initialize usecase layer
	ranker := usecase.NewRanker(usecase.RankerConfig{
		NeuralWeight: cfg.Search.NeuralWeight,
		FuzzyWeight:  cfg.Search.FuzzyWeight,
		MinScore:     cfg.Search.MinScore,
		DefaultLimit: cfg.Search.DefaultLimit,
	})
	searchService := usecase.NewSearchService(indexStore, embedder, ranker, cfg.Search.MaxLimit)

	trainingService, err := usecase.NewTrainingService(indexStore, embedder, usecase.TrainingServiceConfig{
		Timeout:   cfg.Training.Timeout,
		BatchSize: cfg.Embedding.BatchSize,
		PoolSize:  cfg.Training.PoolSize,
	})
	if err != nil {
		log.Fatalf("Failed to create training service: %v", err)
	}
	defer trainingService.Release()

	log.Infof("Ranking: neural=%.2f fuzzy=%.2f min_score=%.2f default_limit=%d",
		cfg.Search.NeuralWeight, cfg.Search.FuzzyWeight, cfg.Search.MinScore, cfg.Search.DefaultLimit)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, trainingService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt, then drain in-flight requests before exit
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received, stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Info("Server stopped")
}
