package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// FetchService retrieves a single URL with scheme/host guarding, bounded
// retries, and content-type screening. Implementations must reject unsafe
// URLs before any network I/O.
type FetchService interface {
	// Fetch downloads the URL and returns the body with extracted title and
	// meta description. The error is terminal: retries have already been
	// exhausted when it is returned.
	Fetch(ctx context.Context, url string) (*models.FetchResult, error)

	// ValidateURL reports whether the URL is safe to fetch, without touching
	// the network.
	ValidateURL(url string) error
}
