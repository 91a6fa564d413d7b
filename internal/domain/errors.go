package domain

import "errors"

var (
	// ErrMalformedFeed is returned when a training feed is not well-formed XML.
	ErrMalformedFeed = errors.New("malformed product feed")

	// ErrEmptyFeed is returned when a well-formed feed contains no product elements.
	ErrEmptyFeed = errors.New("no products found in feed")

	// ErrInvalidShopID is returned when a shop identifier fails validation.
	ErrInvalidShopID = errors.New("invalid shop_id")

	// ErrNotTrained is returned when no index exists for the requested shop.
	ErrNotTrained = errors.New("model not trained for this shop")

	// ErrTrainingInProgress is returned when a training run is already active
	// for the shop.
	ErrTrainingInProgress = errors.New("training already in progress for this shop")

	// ErrTrainingTimeout is returned when a training run exceeds its deadline.
	ErrTrainingTimeout = errors.New("training exceeded time limit")

	// ErrEmbedderFailure is returned when the embedding backend is unreachable
	// or returns an unusable response.
	ErrEmbedderFailure = errors.New("embedding service failure")

	// ErrStoreFailure is returned when the index store cannot be read or written.
	ErrStoreFailure = errors.New("index store failure")

	// ErrInvalidRequest is returned when request parameters are missing or invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")
)
