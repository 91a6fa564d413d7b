package usecase

import (
	"math"
	"sort"

	"github.com/neuralsearch/backend/internal/domain"
)

// Default ranking parameters, matching the documented 70/30 blend and
// five-result pages.
const (
	defaultNeuralWeight = 0.7
	defaultFuzzyWeight  = 0.3
	defaultLimit        = 5
)

// RankerConfig holds configuration for the hybrid ranker
type RankerConfig struct {
	NeuralWeight float64
	FuzzyWeight  float64
	MinScore     float64
	DefaultLimit int
}

// Ranker blends neural and fuzzy scores into one ranked result list.
type Ranker struct {
	neuralWeight float64
	fuzzyWeight  float64
	minScore     float64
	defaultLimit int
}

// NewRanker creates a ranker with the given configuration. Weights are
// normalized to sum to 1 so blended scores stay in [0,1]; zero or negative
// values fall back to the 0.7/0.3 defaults.
func NewRanker(config RankerConfig) *Ranker {
	neural := config.NeuralWeight
	fuzzy := config.FuzzyWeight
	if neural <= 0 && fuzzy <= 0 {
		neural = defaultNeuralWeight
		fuzzy = defaultFuzzyWeight
	}
	if neural < 0 {
		neural = 0
	}
	if fuzzy < 0 {
		fuzzy = 0
	}
	sum := neural + fuzzy
	neural /= sum
	fuzzy /= sum

	limit := config.DefaultLimit
	if limit <= 0 {
		limit = defaultLimit
	}

	minScore := config.MinScore
	if minScore < 0 {
		minScore = 0
	}

	return &Ranker{
		neuralWeight: neural,
		fuzzyWeight:  fuzzy,
		minScore:     minScore,
		defaultLimit: limit,
	}
}

// Rank scores every product in the index against the query embedding and the
// per-product fuzzy scores, then returns the top results sorted by blended
// score. Ties keep catalog order. limit <= 0 uses the configured default;
// a limit beyond the catalog returns everything above the score floor.
func (r *Ranker) Rank(queryEmbedding []float32, index *domain.TenantIndex, fuzzyScores []float64, limit int) []domain.SearchResult {
	if index == nil || len(index.Products) == 0 {
		return []domain.SearchResult{}
	}
	if limit <= 0 {
		limit = r.defaultLimit
	}

	results := make([]domain.SearchResult, 0, len(index.Products))
	for i, product := range index.Products {
		var neural float64
		if i < len(index.Embeddings) {
			neural = neuralScore(queryEmbedding, index.Embeddings[i])
		}

		var fuzzy float64
		if i < len(fuzzyScores) {
			fuzzy = fuzzyScores[i]
		}

		score := r.neuralWeight*neural + r.fuzzyWeight*fuzzy
		if score < r.minScore {
			continue
		}

		results = append(results, domain.SearchResult{
			Product:     product,
			Score:       score,
			NeuralScore: neural,
			FuzzyScore:  fuzzy,
		})
	}

	// Stable sort keeps catalog order for equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// neuralScore maps cosine similarity from [-1,1] into [0,1].
func neuralScore(query, doc []float32) float64 {
	cos := cosineSimilarity(query, doc)
	score := (cos + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths compare over the shared prefix; zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
