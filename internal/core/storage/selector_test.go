package storage

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvforge/cvforge/internal/core/document"
)

// probeBackend is an in-memory backend whose readiness can be flipped
// mid-test.
type probeBackend struct {
	*MemoryBackend
	ready atomic.Bool
}

func (b *probeBackend) Ready() bool { return b.ready.Load() }

func namedDoc(name string) *document.Resume {
	doc := document.New()
	doc.Basics.Name = name
	return doc
}

func TestSelectorReEvaluatesProbeOnEveryCall(t *testing.T) {
	ctx := context.Background()
	primary := &probeBackend{MemoryBackend: NewMemoryBackend()}
	fallback := NewMemoryBackend()
	sel := NewSelector(primary, fallback)

	require.NoError(t, primary.MemoryBackend.Save(ctx, "r1", namedDoc("engine")))
	require.NoError(t, fallback.Save(ctx, "r1", namedDoc("durable")))

	// Engine not ready: the durable fallback serves.
	got, err := sel.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "durable", got.Basics.Name)

	// The engine becomes ready mid-session; the very next call routes to it.
	primary.ready.Store(true)
	got, err = sel.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "engine", got.Basics.Name)

	// And it can drop out again.
	primary.ready.Store(false)
	got, err = sel.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "durable", got.Basics.Name)
}

func TestSelectorWritesFollowProbe(t *testing.T) {
	ctx := context.Background()
	primary := &probeBackend{MemoryBackend: NewMemoryBackend()}
	fallback := NewMemoryBackend()
	sel := NewSelector(primary, fallback)

	require.NoError(t, sel.Save(ctx, "cold", document.New()))
	primary.ready.Store(true)
	require.NoError(t, sel.Save(ctx, "warm", document.New()))

	inFallback, err := fallback.Exists(ctx, "cold")
	require.NoError(t, err)
	assert.True(t, inFallback)

	inPrimary, err := primary.MemoryBackend.Exists(ctx, "warm")
	require.NoError(t, err)
	assert.True(t, inPrimary)
	inFallback, err = fallback.Exists(ctx, "warm")
	require.NoError(t, err)
	assert.False(t, inFallback)
}

func TestSelectorNilPrimaryAlwaysFallsBack(t *testing.T) {
	ctx := context.Background()
	fallback := NewMemoryBackend()
	sel := NewSelector(nil, fallback)

	require.NoError(t, sel.Save(ctx, "r1", document.New()))
	ok, err := sel.Exists(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := sel.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}
