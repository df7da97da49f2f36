package layout

import (
	"fmt"

	"github.com/cvforge/cvforge/internal/core/document"
)

// KeyboardState is the keyboard drag session state.
type KeyboardState uint8

const (
	KeyboardIdle KeyboardState = iota
	KeyboardPickedUp
)

// Direction is an arrow-key move while a section is picked up.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// KeyboardDrag drives keyboard-based drag sessions. Pick-up snapshots the
// arrangement so Escape can roll the whole session back.
//
// States: idle -> picked-up -> idle (drop or cancel).
type KeyboardDrag struct {
	r        *Reconciler
	state    KeyboardState
	key      document.SectionKey
	snapshot []document.Column

	// Focus, when set, is called on cancel so input focus returns to the
	// item's original position.
	Focus func(key document.SectionKey)
}

// State returns the current session state.
func (k *KeyboardDrag) State() KeyboardState { return k.state }

// PickUp starts a session for key, snapshotting the current arrangement for
// cancel-rollback.
func (k *KeyboardDrag) PickUp(key document.SectionKey) error {
	if k.state != KeyboardIdle {
		return fmt.Errorf("drag already in progress")
	}
	if k.r.pointer.state == PointerDragging {
		return fmt.Errorf("pointer drag in progress")
	}
	if _, _, ok := k.r.locate(key); !ok {
		return fmt.Errorf("section %s is not on this page", key)
	}
	k.state = KeyboardPickedUp
	k.key = key
	k.snapshot = cloneColumns(k.r.Columns())
	k.r.announce(fmt.Sprintf("Picked up %s. Use arrow keys to move, Enter to drop, Escape to cancel.", key))
	return nil
}

// Move applies one arrow key: Up/Down swap with the neighbor in the same
// column, Left/Right append the item to the adjacent column. Boundary moves
// are no-ops.
func (k *KeyboardDrag) Move(dir Direction) {
	if k.state != KeyboardPickedUp {
		return
	}
	r := k.r
	r.mu.Lock()
	col, idx, ok := r.locateLocked(k.key)
	if !ok {
		r.mu.Unlock()
		return
	}
	moved := false
	switch dir {
	case Up:
		if idx > 0 {
			column := r.cols[col]
			column[idx], column[idx-1] = column[idx-1], column[idx]
			idx--
			moved = true
		}
	case Down:
		if idx < len(r.cols[col])-1 {
			column := r.cols[col]
			column[idx], column[idx+1] = column[idx+1], column[idx]
			idx++
			moved = true
		}
	case Left:
		if col > 0 {
			r.removeLocked(k.key)
			r.cols[col-1] = append(r.cols[col-1], k.key)
			col--
			idx = len(r.cols[col]) - 1
			moved = true
		}
	case Right:
		if col < len(r.cols)-1 {
			r.removeLocked(k.key)
			r.cols[col+1] = append(r.cols[col+1], k.key)
			col++
			idx = len(r.cols[col]) - 1
			moved = true
		}
	}
	size := len(r.cols[col])
	r.mu.Unlock()

	if moved {
		r.announce(fmt.Sprintf("%s moved to position %d of %d in column %d.", k.key, idx+1, size, col+1))
	}
}

// Drop confirms the session and persists the arrangement.
func (k *KeyboardDrag) Drop() error {
	if k.state != KeyboardPickedUp {
		return fmt.Errorf("no drag in progress")
	}
	key := k.key
	k.state = KeyboardIdle
	k.key = ""
	k.snapshot = nil
	k.r.announce(fmt.Sprintf("Dropped %s.", key))
	return k.r.persist()
}

// Cancel restores the pick-up snapshot and returns focus to the item's
// original position.
func (k *KeyboardDrag) Cancel() {
	if k.state != KeyboardPickedUp {
		return
	}
	key := k.key
	k.state = KeyboardIdle
	k.key = ""
	k.r.mu.Lock()
	k.r.cols = cloneColumns(k.snapshot)
	k.r.mu.Unlock()
	k.snapshot = nil
	k.r.announce(fmt.Sprintf("Cancelled dragging %s.", key))
	if k.Focus != nil {
		k.Focus(key)
	}
}
