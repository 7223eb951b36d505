package knowledge

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/rs/zerolog/log"
)

// Search performs a BM25 match query over every text field.
func (b *Base) Search(query string, limit int) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.index == nil {
		return nil, fmt.Errorf("knowledge index is closed")
	}
	if limit <= 0 {
		limit = b.limit
	}

	searchRequest := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)

	results, err := b.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]Hit, 0, len(results.Hits))
	for _, h := range results.Hits {
		i, ok := b.byID[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{Entry: b.entries[i], Score: h.Score})
	}

	return hits, nil
}

// SearchKnowledge implements Source. Index failures are logged and yield no
// results.
func (b *Base) SearchKnowledge(query string) []Entry {
	hits, err := b.Search(query, 0)
	if err != nil {
		log.Warn().Err(err).Msg("knowledge search failed")
		return nil
	}

	entries := make([]Entry, len(hits))
	for i, h := range hits {
		entries[i] = h.Entry
	}
	return entries
}

// ByCategory returns the entries of a category in catalog order.
func (b *Base) ByCategory(category string) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Entry
	for _, e := range b.entries {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out
}
