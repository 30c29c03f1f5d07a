package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
)

// IsDocumentPath reports whether ref names a document file on disk rather
// than a graph id in the store.
func IsDocumentPath(ref string) bool {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".json", ".yaml", ".yml":
	default:
		return false
	}
	_, err := os.Stat(ref)
	return err == nil
}

// ReadDocument decodes a graph document from a JSON or YAML file. A
// document without an id takes the file's base name.
func ReadDocument(path string) (*domain.GraphDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc domain.GraphDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		dec := json.NewDecoder(strings.NewReader(string(data)))
		dec.UseNumber()
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &doc, nil
}

// ResolveDocument reads ref from disk when it is a document path and from
// the engine's store otherwise.
func ResolveDocument(ctx context.Context, eng *skillgraph.Engine, ref string) (*domain.GraphDocument, error) {
	if IsDocumentPath(ref) {
		return ReadDocument(ref)
	}
	return eng.Store().Load(ctx, ref)
}

// ResolveGraph resolves ref and loads it into a live graph.
func ResolveGraph(ctx context.Context, eng *skillgraph.Engine, ref string) (*graph.Graph, error) {
	doc, err := ResolveDocument(ctx, eng, ref)
	if err != nil {
		return nil, err
	}
	return eng.LoadDocument(doc)
}
