package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvforge/cvforge/internal/core/document"
)

func TestKeyboardMoveUpDownSwapsNeighbors(t *testing.T) {
	_, r := twoColumnStore(t)
	kb := r.Keyboard()

	require.NoError(t, kb.PickUp(document.KeyExperience))
	kb.Move(Down)
	cols := r.Columns()
	assert.Equal(t, document.Column{
		document.KeySummary, document.KeyEducation, document.KeyExperience,
	}, cols[0][:3])

	kb.Move(Up)
	kb.Move(Up)
	cols = r.Columns()
	assert.Equal(t, document.Column{
		document.KeyExperience, document.KeySummary, document.KeyEducation,
	}, cols[0][:3])

	// Boundary: already first, Up is a no-op.
	kb.Move(Up)
	assert.Equal(t, cols, r.Columns())

	require.NoError(t, kb.Drop())
}

func TestKeyboardMoveLeftRightAppendsToAdjacentColumn(t *testing.T) {
	_, r := twoColumnStore(t)
	kb := r.Keyboard()

	require.NoError(t, kb.PickUp(document.KeySummary))
	kb.Move(Right)
	cols := r.Columns()
	assert.NotContains(t, cols[0], document.KeySummary)
	assert.Equal(t, document.KeySummary, cols[1][len(cols[1])-1])

	kb.Move(Left)
	cols = r.Columns()
	assert.Equal(t, document.KeySummary, cols[0][len(cols[0])-1])

	// Boundary: already leftmost, Left is a no-op.
	kb.Move(Left)
	assert.Equal(t, cols, r.Columns())

	require.NoError(t, kb.Drop())
}

func TestKeyboardDropPersists(t *testing.T) {
	st, r := twoColumnStore(t)
	kb := r.Keyboard()

	require.NoError(t, kb.PickUp(document.KeyExperience))
	kb.Move(Down)
	require.NoError(t, kb.Drop())
	assert.Equal(t, KeyboardIdle, kb.State())

	doc := st.Document()
	page := doc.Metadata.Layout[0]
	assert.Equal(t, document.Column{
		document.KeySummary, document.KeyEducation, document.KeyExperience,
	}, page[0][:3])
}

func TestKeyboardEscapeRestoresPrePickupArrangement(t *testing.T) {
	_, r := twoColumnStore(t)
	kb := r.Keyboard()
	before := r.Columns()

	require.NoError(t, kb.PickUp(document.KeySummary))
	kb.Move(Down)
	kb.Move(Down)
	kb.Move(Right)
	kb.Move(Up)
	kb.Cancel()

	assert.Equal(t, KeyboardIdle, kb.State())
	assert.Equal(t, before, r.Columns())
}

func TestKeyboardCancelReturnsFocus(t *testing.T) {
	_, r := twoColumnStore(t)
	kb := r.Keyboard()

	var focused document.SectionKey
	kb.Focus = func(key document.SectionKey) { focused = key }

	require.NoError(t, kb.PickUp(document.KeySkills))
	kb.Move(Up)
	kb.Cancel()
	assert.Equal(t, document.KeySkills, focused)
}

func TestKeyboardAnnouncesEveryTransition(t *testing.T) {
	st := newTestStore(t)
	var messages []string
	r, err := NewReconciler(st, Config{Announcer: func(msg string) { messages = append(messages, msg) }})
	require.NoError(t, err)
	defer r.Close()

	kb := r.Keyboard()
	require.NoError(t, kb.PickUp(document.KeySummary))
	kb.Move(Down)
	require.NoError(t, kb.Drop())

	require.Len(t, messages, 3)
	assert.Contains(t, messages[0], "Picked up")
	assert.Contains(t, messages[1], "position")
	assert.Contains(t, messages[2], "Dropped")
}

func TestKeyboardPickUpRejectedDuringPointerDrag(t *testing.T) {
	_, r := twoColumnStore(t)

	require.NoError(t, r.Pointer().Begin(document.KeySummary))
	assert.Error(t, r.Keyboard().PickUp(document.KeySkills))
	r.Pointer().Cancel()
}
