package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/skillgraph/pkg/domain"
)

// Format selects the on-disk encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Store implements ports.GraphStore using the local filesystem, one
// document per file.
type Store struct {
	BasePath string
	Format   Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat selects JSON (the default) or YAML files.
func WithFormat(f Format) Option {
	return func(s *Store) {
		if f == YAML || f == JSON {
			s.Format = f
		}
	}
}

// New creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".skillgraph/graphs".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".skillgraph", "graphs")
	}
	s := &Store{BasePath: basePath, Format: JSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ext() string { return "." + string(s.Format) }

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("graph id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("graph id %q is not a valid file name", id)
	}
	return filepath.Join(s.BasePath, id+s.ext()), nil
}

func (s *Store) marshal(doc *domain.GraphDocument) ([]byte, error) {
	if s.Format == YAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (s *Store) unmarshal(data []byte, doc *domain.GraphDocument) error {
	if s.Format == YAML {
		return yaml.Unmarshal(data, doc)
	}
	return json.Unmarshal(data, doc)
}

// Save writes the document atomically: a temp file in the same directory
// is written, synced and renamed over the destination.
func (s *Store) Save(ctx context.Context, doc *domain.GraphDocument) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}
	destPath, err := s.path(doc.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	data, err := s.marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+doc.ID+"-*"+s.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename does not replace an existing file on Windows.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove previous graph file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads and decodes the document file.
func (s *Store) Load(ctx context.Context, id string) (*domain.GraphDocument, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("graph %q: %w", id, domain.ErrGraphNotFound)
		}
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var doc domain.GraphDocument
	if err := s.unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph %q: %w", id, err)
	}
	return &doc, nil
}

// Delete removes the document file.
func (s *Store) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete graph file: %w", err)
	}
	return nil
}

// List returns the IDs of all document files in the directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != s.ext() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, s.ext()))
	}
	sort.Strings(ids)
	return ids, nil
}
