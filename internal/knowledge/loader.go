package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Entries []Entry `yaml:"entries"`
}

// LoadFile reads a YAML catalog.
//
//	entries:
//	  - id: bilan
//	    title: Consulter le Bilan
//	    keywords: [bilan, actif, passif]
//	    navigationPath: /etats-financiers/bilan
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	if err := Validate(file.Entries); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	return file.Entries, nil
}

// SaveFile writes entries as a YAML catalog.
func SaveFile(path string, entries []Entry) error {
	data, err := yaml.Marshal(catalogFile{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	return nil
}

// Validate checks that every entry has a unique, non-empty id.
func Validate(entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d (%q): empty id", i, e.Title)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate entry id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}
