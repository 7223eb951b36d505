package knowledge

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/rs/zerolog/log"
)

// defaultSearchLimit caps SearchKnowledge results.
const defaultSearchLimit = 5

// Base is an indexed, swappable knowledge catalog.
type Base struct {
	mu      sync.RWMutex
	index   bleve.Index
	entries []Entry
	byID    map[string]int
	limit   int
}

// Option configures a Base.
type Option func(*Base)

// WithSearchLimit sets the maximum number of SearchKnowledge results.
func WithSearchLimit(n int) Option {
	return func(b *Base) {
		if n > 0 {
			b.limit = n
		}
	}
}

// New indexes entries in a fresh in-memory Bleve index.
func New(entries []Entry, opts ...Option) (*Base, error) {
	b := &Base{limit: defaultSearchLimit}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.Replace(entries); err != nil {
		return nil, err
	}

	return b, nil
}

// NewDefault indexes the built-in catalog.
func NewDefault(opts ...Option) (*Base, error) {
	return New(DefaultCatalog(), opts...)
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	entryMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"title", "description", "content", "keywords", "examples"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = fr.AnalyzerName
		entryMapping.AddFieldMappingsAt(field, fm)
	}

	// Category: exact match, kept out of the composite field.
	categoryMapping := bleve.NewTextFieldMapping()
	categoryMapping.Analyzer = keyword.Name
	categoryMapping.IncludeInAll = false
	entryMapping.AddFieldMappingsAt("category", categoryMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = fr.AnalyzerName
	indexMapping.AddDocumentMapping("_default", entryMapping)

	return indexMapping
}

// Replace rebuilds the index from entries and swaps it in atomically.
// The previous index stays in service if indexing fails.
func (b *Base) Replace(entries []Entry) error {
	if err := Validate(entries); err != nil {
		return err
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := index.NewBatch()
	for _, e := range entries {
		doc := map[string]interface{}{
			"title":       e.Title,
			"description": e.Description,
			"content":     e.Content,
			"keywords":    e.Keywords,
			"examples":    strings.Join(e.Examples, " "),
			"category":    e.Category,
		}
		if err := batch.Index(e.ID, doc); err != nil {
			log.Warn().Err(err).Str("entry", e.ID).Msg("failed to index knowledge entry")
		}
	}

	if err := index.Batch(batch); err != nil {
		index.Close()
		return fmt.Errorf("failed to batch index entries: %w", err)
	}

	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		byID[e.ID] = i
	}
	copied := append([]Entry(nil), entries...)

	b.mu.Lock()
	old := b.index
	b.index = index
	b.entries = copied
	b.byID = byID
	b.mu.Unlock()

	if old != nil {
		old.Close()
	}

	log.Debug().Int("entries", len(entries)).Msg("knowledge index rebuilt")
	return nil
}

// Entries returns a copy of the catalog in its declared order.
func (b *Base) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]Entry(nil), b.entries...)
}

// Lookup returns the entry with the given id.
func (b *Base) Lookup(id string) (Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i, ok := b.byID[id]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i], true
}

// Count returns the number of indexed entries.
func (b *Base) Count() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	docCount, err := b.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close releases the index.
func (b *Base) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.index != nil {
		err := b.index.Close()
		b.index = nil
		return err
	}

	return nil
}
