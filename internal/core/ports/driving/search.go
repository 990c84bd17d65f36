package driving

import (
	"context"

	"github.com/kenjiroe/lufykms-go/internal/core/domain"
)

// SearchService answers similarity queries against the corpus.
type SearchService interface {
	// SearchSimilar embeds the query and ranks documents by cosine
	// similarity, honouring the option set.
	SearchSimilar(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// InvalidateCaches clears the document snapshot and every cached
	// query result.
	InvalidateCaches()
}
