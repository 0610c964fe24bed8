package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ramkansal/leadercrawl/pkg/plugin"
)

// JSONStore persists the aggregate as one indented JSON document keyed by country.
type JSONStore struct {
	Path string
}

// NewJSONStore creates a store backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{Path: path}
}

// Save writes agg to a temporary file next to Path and renames it into place,
// so a failed write never leaves a truncated file behind.
func (s *JSONStore) Save(agg plugin.Aggregate) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(agg); err != nil {
		return fmt.Errorf("%w: encode %s: %w", plugin.ErrStorage, s.Path, err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", plugin.ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", plugin.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", plugin.ErrStorage, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %w", plugin.ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("%w: %w", plugin.ErrStorage, err)
	}
	return nil
}

// Load reads back a file written by Save.
func (s *JSONStore) Load() (plugin.Aggregate, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", plugin.ErrStorage, err)
	}

	var agg plugin.Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", plugin.ErrStorage, s.Path, err)
	}
	if agg == nil {
		agg = plugin.Aggregate{}
	}
	return agg, nil
}
