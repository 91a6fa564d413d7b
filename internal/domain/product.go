package domain

import "strings"

// Product is one catalog entry from a tenant's product feed.
// Price stays a string: it is a pass-through value from the feed and the
// service never does arithmetic on it.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Model       string `json:"model"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	URL         string `json:"url"`
}

// SearchText returns the text the semantic encoder sees for this product.
func (p Product) SearchText() string {
	return strings.Join([]string{p.Name, p.Model, p.Description, p.Category}, " ")
}

// TenantIndex is the trained search index for a single shop: the catalog
// snapshot plus one embedding per product. Indexes are immutable once built;
// retraining replaces the whole index.
type TenantIndex struct {
	ShopID     string      `json:"shop_id"`
	Products   []Product   `json:"products"`
	Embeddings [][]float32 `json:"embeddings"`
	TrainedAt  int64       `json:"trained_at"` // Unix seconds
}

// Summary returns the registry view of the index.
func (ti *TenantIndex) Summary() ShopSummary {
	return ShopSummary{
		ShopID:        ti.ShopID,
		ProductsCount: len(ti.Products),
		TrainedAt:     ti.TrainedAt,
	}
}

// ShopSummary is the registry entry for a trained shop, served by the
// status and shop-listing endpoints.
type ShopSummary struct {
	ShopID        string `json:"shop_id"`
	ProductsCount int    `json:"products_count"`
	TrainedAt     int64  `json:"trained_at"`
}

// SearchResult is one ranked hit: the product plus the blended score and its
// two components. All three scores are in [0,1].
type SearchResult struct {
	Product     Product
	Score       float64
	NeuralScore float64
	FuzzyScore  float64
}
