package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvforge/cvforge/internal/core/document"
	"github.com/cvforge/cvforge/internal/core/events/bus"
	"github.com/cvforge/cvforge/internal/core/storage"
	"github.com/cvforge/cvforge/internal/core/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(storage.NewMemoryBackend(), bus.New(), store.Config{AutosaveDelay: 20 * time.Millisecond})
	st.CreateNew("r1")
	t.Cleanup(st.Close)
	return st
}

func newTestReconciler(t *testing.T, st *store.Store) *Reconciler {
	t.Helper()
	r, err := NewReconciler(st, Config{})
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestReconcilerProjectsDefaultLayout(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(t, st)

	cols := r.Columns()
	require.Len(t, cols, 1)
	assert.Equal(t, document.Column(document.DefaultSectionOrder()), cols[0])
}

func TestReconcilerResyncsOnExternalLayoutChange(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(t, st)

	next := document.Layout{document.Page{
		document.Column{document.KeySummary, document.KeyExperience},
		document.Column{document.KeySkills},
	}}
	require.NoError(t, st.UpdateLayout(next))

	cols := r.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, document.Column{document.KeySummary, document.KeyExperience}, cols[0][:2])
	// The remaining known keys were appended to the last column.
	assert.Equal(t, document.KeySkills, cols[1][0])
}

func TestReconcilerSkipsItsOwnWrites(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(t, st)

	// Put the projection into a locally mutated, unpersisted state.
	kb := r.Keyboard()
	require.NoError(t, kb.PickUp(document.KeySummary))
	kb.Move(Down)
	moved := r.Columns()

	// A layout event tagged with the reconciler's own origin must not
	// trigger a resync that would clobber the local state.
	err := st.Bus().Publish(bus.NewEvent(store.EventTypeLayout, r.ID(), nil))
	require.NoError(t, err)
	assert.Equal(t, moved, r.Columns())

	// The same event from any other origin resynchronizes.
	err = st.Bus().Publish(bus.NewEvent(store.EventTypeLayout, store.OriginEditor, nil))
	require.NoError(t, err)
	assert.NotEqual(t, moved, r.Columns())
}

func TestReconcilerPersistWritesThroughStore(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(t, st)

	require.NoError(t, r.SetColumnCount(2))

	doc := st.Document()
	require.Len(t, doc.Metadata.Layout, 1)
	assert.Len(t, doc.Metadata.Layout[0], 2)
	assert.Equal(t, store.StatusDirty, st.State().Status)
}

func TestSetColumnCountGrowAndShrink(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(t, st)

	require.NoError(t, r.SetColumnCount(3))
	assert.Len(t, r.Columns(), 3)

	// Spread sections out, then collapse back to one column.
	require.NoError(t, st.UpdateLayout(document.Layout{document.Page{
		document.Column{document.KeySummary, document.KeyExperience},
		document.Column{document.KeySkills},
		document.Column{document.KeyEducation, document.KeyLanguages},
	}}))
	before := r.Columns()
	require.Len(t, before, 3)

	require.NoError(t, r.SetColumnCount(1))
	cols := r.Columns()
	require.Len(t, cols, 1)

	// Original relative order: column 1, then columns 2 and 3 appended.
	var want document.Column
	for _, c := range before {
		want = append(want, c...)
	}
	assert.Equal(t, want, cols[0])
}

func TestSetColumnCountBounds(t *testing.T) {
	st := newTestStore(t)
	r := newTestReconciler(t, st)

	assert.Error(t, r.SetColumnCount(0))
	assert.Error(t, r.SetColumnCount(4))
}
