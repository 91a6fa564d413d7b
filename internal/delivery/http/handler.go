package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/neuralsearch/backend/internal/domain"
	"github.com/neuralsearch/backend/internal/usecase"
	"github.com/neuralsearch/backend/pkg/log"
)

const (
	serviceName    = "neural-search-api"
	serviceVersion = "1.0.0"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search   *usecase.SearchService
	training *usecase.TrainingService
}

// NewHandler creates a new HTTP handler
func NewHandler(search *usecase.SearchService, training *usecase.TrainingService) *Handler {
	return &Handler{
		search:   search,
		training: training,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// trainRequest is the POST /train body.
type trainRequest struct {
	ShopID string `json:"shop_id"`
	XML    string `json:"xml"`
}

// Train builds a new search index for a shop from an XML product feed.
// Training is synchronous: the response reports the completed index.
func (h *Handler) Train(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "JSON body required")
		return
	}
	if req.ShopID == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "shop_id is required")
		return
	}
	if req.XML == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "xml content is required")
		return
	}

	summary, err := h.training.Train(c.Request.Context(), req.ShopID, req.XML)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"shop_id":        summary.ShopID,
		"products_count": summary.ProductsCount,
		"trained_at":     summary.TrainedAt,
	})
}

// searchResult flattens a product and its scores into one response object.
type searchResult struct {
	domain.Product
	Score       float64 `json:"score"`
	NeuralScore float64 `json:"neural_score"`
	FuzzyScore  float64 `json:"fuzzy_score"`
}

// Search returns the shop's products ranked against the query.
func (h *Handler) Search(c *gin.Context) {
	shopID := c.Query("shop_id")
	query := c.Query("q")

	if shopID == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "shop_id is required")
		return
	}
	if query == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "q (query) is required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", "limit must be an integer")
			return
		}
		limit = parsed
	}

	results, err := h.search.Search(c.Request.Context(), shopID, query, limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	payload := make([]searchResult, len(results))
	for i, r := range results {
		payload[i] = searchResult{
			Product:     r.Product,
			Score:       r.Score,
			NeuralScore: r.NeuralScore,
			FuzzyScore:  r.FuzzyScore,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"shop_id": shopID,
		"query":   query,
		"results": payload,
		"count":   len(payload),
	})
}

// Status reports whether a shop has a trained index.
func (h *Handler) Status(c *gin.Context) {
	shopID := c.Query("shop_id")
	if shopID == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "shop_id is required")
		return
	}

	summary, err := h.search.Status(c.Request.Context(), shopID)
	if err != nil {
		// Never trained is a normal status, not a failure
		if errors.Is(err, domain.ErrNotTrained) {
			c.JSON(http.StatusOK, gin.H{
				"trained": false,
				"shop_id": shopID,
			})
			return
		}
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trained":        true,
		"shop_id":        summary.ShopID,
		"products_count": summary.ProductsCount,
		"trained_at":     summary.TrainedAt,
	})
}

// ListShops lists every trained shop.
func (h *Handler) ListShops(c *gin.Context) {
	shops, err := h.search.ListShops(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shops": shops,
		"count": len(shops),
	})
}

// respondDomainError maps a domain error to an HTTP status and a
// machine-readable error kind. Operational faults are logged here; user
// input errors are the caller's problem and only echoed back.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidShopID):
		respondError(c, http.StatusBadRequest, "invalid_shop_id", "shop_id must be alphanumeric")
	case errors.Is(err, domain.ErrInvalidRequest):
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrMalformedFeed):
		respondError(c, http.StatusBadRequest, "malformed_feed", err.Error())
	case errors.Is(err, domain.ErrEmptyFeed):
		respondError(c, http.StatusBadRequest, "empty_feed", err.Error())
	case errors.Is(err, domain.ErrNotTrained):
		respondError(c, http.StatusNotFound, "not_trained", "model not trained for this shop")
	case errors.Is(err, domain.ErrTrainingInProgress):
		respondError(c, http.StatusConflict, "training_in_progress", err.Error())
	case errors.Is(err, domain.ErrTrainingTimeout):
		log.Errorw("training timed out", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusGatewayTimeout, "timeout", err.Error())
	case errors.Is(err, domain.ErrEmbedderFailure):
		log.Errorw("embedding backend failure", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusBadGateway, "embedder_unavailable", "embedding service temporarily unavailable")
	case errors.Is(err, domain.ErrStoreFailure):
		log.Errorw("index store failure", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "storage_failure", "index store unavailable")
	default:
		log.Errorw("unexpected error", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// respondError writes the structured failure envelope.
func respondError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   kind,
		"message": message,
	})
}
