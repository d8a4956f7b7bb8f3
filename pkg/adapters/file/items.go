// Package file reads item definitions from YAML or JSON files and watches
// them for changes.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JanMattner/cuevox/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ItemsFile is the structure of items.yaml.
type ItemsFile struct {
	Items []domain.ItemSpec `yaml:"items" json:"items"`
}

// Source implements ports.ItemSource and ports.Watchable for one file.
type Source struct {
	Path string
}

// NewSource creates a source reading path.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// LoadItems reads and validates the file.
func (s *Source) LoadItems(ctx context.Context) ([]domain.ItemSpec, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	var f ItemsFile
	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}

	seen := make(map[string]bool, len(f.Items))
	for i, it := range f.Items {
		if it.Name == "" {
			return nil, fmt.Errorf("%s: item %d has no name", s.Path, i)
		}
		if seen[it.Name] {
			return nil, fmt.Errorf("%s: duplicate item %q", s.Path, it.Name)
		}
		seen[it.Name] = true
	}
	return f.Items, nil
}
