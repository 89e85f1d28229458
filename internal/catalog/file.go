package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/italolelis/film_downloader/internal/film"
	"gopkg.in/yaml.v3"
)

// File reads the catalog from a YAML or JSON file on disk. The format is
// chosen by extension, anything other than .json is parsed as YAML.
type File struct {
	path string
}

// NewFile creates a catalog source backed by path.
func NewFile(path string) *File {
	return &File{path: path}
}

// List reads and parses the file on every call.
func (f *File) List(context.Context) ([]film.Item, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	if strings.EqualFold(filepath.Ext(f.path), ".json") {
		return ParseJSON(data)
	}

	return ParseYAML(data)
}

// ParseYAML decodes a YAML list of catalog items.
func ParseYAML(data []byte) ([]film.Item, error) {
	if len(data) == 0 {
		return []film.Item{}, nil
	}

	var items []film.Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	if items == nil {
		return []film.Item{}, nil
	}

	return items, nil
}

// ParseJSON decodes a JSON array of catalog items.
func ParseJSON(data []byte) ([]film.Item, error) {
	if len(data) == 0 {
		return []film.Item{}, nil
	}

	var items []film.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}

	if items == nil {
		return []film.Item{}, nil
	}

	return items, nil
}
