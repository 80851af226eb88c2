// Package embed turns query text into embedding vectors for the kNN
// side of a search.
package embed

import (
	"context"
	"time"
)

// Default encoder parameters.
const (
	// DefaultDimensions matches the vector mapping of the articles index.
	DefaultDimensions = 384

	// DefaultCacheSize is the number of query embeddings kept in memory.
	// At 384 dimensions * 4 bytes * 1000 entries that is about 1.5MB.
	DefaultCacheSize = 1000

	// DefaultTimeout bounds a single encode round trip.
	DefaultTimeout = 30 * time.Second
)

// Encoder produces a fixed-dimension embedding for a piece of text.
type Encoder interface {
	// Encode embeds text. The returned vector always has Dimensions()
	// entries.
	Encode(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector width of the model.
	Dimensions() int

	// ModelName identifies the model, for logging and cache keys.
	ModelName() string
}
