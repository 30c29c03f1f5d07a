package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/ports"
)

// Mask replaces string values of sensitive parameters and inline values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.GraphStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks, on save, parameters whose name and inline node
// values whose port key match any pattern. Strings become Mask; other
// values are dropped so the loaded graph falls back to type defaults.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.GraphStore) ports.GraphStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, doc *domain.GraphDocument) error {
	if doc == nil {
		return m.next.Save(ctx, doc)
	}
	// never touch the caller's document
	cloned := doc.Clone()
	for i := range cloned.Parameters {
		if m.matches(cloned.Parameters[i].Name) {
			cloned.Parameters[i].Value = masked(cloned.Parameters[i].Value)
		}
	}
	for i := range cloned.Nodes {
		maskMap(cloned.Nodes[i].Values, m.matches)
	}
	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.GraphDocument, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func maskMap(values map[string]any, match func(string) bool) {
	for k, v := range values {
		if match(k) {
			if mv := masked(v); mv == nil {
				delete(values, k)
			} else {
				values[k] = mv
			}
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, match)
		}
	}
}

func masked(v any) any {
	if _, ok := v.(string); ok {
		return Mask
	}
	return nil
}
