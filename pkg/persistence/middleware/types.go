// Package middleware wraps a ports.GraphStore with cross-cutting behavior:
// encryption at rest and masking of sensitive parameter values.
package middleware

import "github.com/aretw0/skillgraph/pkg/ports"

// Middleware allows wrapping a GraphStore to add behavior.
type Middleware func(ports.GraphStore) ports.GraphStore

// Chain applies mws to store so the first middleware sees calls first.
func Chain(store ports.GraphStore, mws ...Middleware) ports.GraphStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
