/*
Package knowledge implements the knowledge base the assistant answers from.

Entries come from the built-in SYSCOHADA catalog or from a YAML file, and are
indexed in an in-memory Bleve index using the French analyzer so that
SearchKnowledge tolerates plurals, elisions and stop words.
*/
package knowledge

// Entry is a single knowledge base article.
type Entry struct {
	ID             string   `yaml:"id" json:"id"`
	Title          string   `yaml:"title" json:"title"`
	Description    string   `yaml:"description" json:"description"`
	Content        string   `yaml:"content" json:"content"`
	Keywords       []string `yaml:"keywords" json:"keywords"`
	Category       string   `yaml:"category" json:"category"`
	Subcategory    string   `yaml:"subcategory,omitempty" json:"subcategory,omitempty"`
	Examples       []string `yaml:"examples,omitempty" json:"examples,omitempty"`
	NavigationPath string   `yaml:"navigationPath,omitempty" json:"navigationPath,omitempty"`
	// RelatedTopics holds ids of other entries. They may dangle.
	RelatedTopics []string `yaml:"relatedTopics,omitempty" json:"relatedTopics,omitempty"`
}

// Source is the read-only view of a knowledge base.
type Source interface {
	// SearchKnowledge returns zero or more entries matching query, in no
	// guaranteed order of relevance.
	SearchKnowledge(query string) []Entry

	// Entries returns the full catalog.
	Entries() []Entry

	// Lookup returns the entry with the given id.
	Lookup(id string) (Entry, bool)
}

// Hit is an entry with its index score.
type Hit struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
}
