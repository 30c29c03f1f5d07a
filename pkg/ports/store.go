package ports

import (
	"context"

	"github.com/aretw0/skillgraph/pkg/domain"
)

// GraphStore persists graph documents by ID.
type GraphStore interface {
	// Save writes doc under doc.ID, replacing any previous version.
	Save(ctx context.Context, doc *domain.GraphDocument) error

	// Load reads the document with the given ID.
	// Returns domain.ErrGraphNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.GraphDocument, error)

	// Delete removes the document. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the stored IDs in ascending order.
	List(ctx context.Context) ([]string, error)
}
