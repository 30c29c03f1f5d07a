package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph/pkg/adapters/memory"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/nodes"
	"github.com/aretw0/skillgraph/pkg/persistence/middleware"
	"github.com/aretw0/skillgraph/pkg/ports"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"(?i)password", "^ssn"})
	require.NoError(t, err)
	store := mw(underlying)

	doc := ports.ContractDocument("pii")
	doc.Parameters = append(doc.Parameters,
		domain.ParameterRecord{GUID: "pw", Name: "UserPassword", Type: "string", Value: "secret123"},
		domain.ParameterRecord{GUID: "ssn", Name: "ssn", Type: "int", Value: 999999999},
	)
	doc.Nodes[1].Values = map[string]any{"password_hint": "blue", "message": "hi"}

	require.NoError(t, store.Save(ctx, doc))
	assert.Equal(t, "secret123", doc.Parameters[1].Value, "caller document untouched")

	stored, err := underlying.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "five", stored.Parameters[0].Value)
	assert.Equal(t, middleware.Mask, stored.Parameters[1].Value)
	assert.Nil(t, stored.Parameters[2].Value)
	assert.Equal(t, middleware.Mask, stored.Nodes[1].Values["password_hint"])
	assert.Equal(t, "hi", stored.Nodes[1].Values["message"])

	g, err := graph.Load(stored, nodes.NewRegistry())
	require.NoError(t, err, "masked documents still load")
	v, _ := g.ParameterValue("ssn")
	assert.Equal(t, 0, v)
}

func TestPIIMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	mask, err := middleware.NewPIIMiddleware([]string{"X"})
	require.NoError(t, err)
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, mask, seal)
	require.NoError(t, store.Save(ctx, ports.ContractDocument("chain")))

	loaded, err := store.Load(ctx, "chain")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Parameters[0].Value, "masked before sealing")
}
