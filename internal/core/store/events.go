package store

import "time"

// Event types published on the bus. Subscribers compare Event.Source()
// against their own identity to skip events they caused themselves.
const (
	// EventTypeLoaded fires when the in-memory document is replaced
	// wholesale: load, create, import.
	EventTypeLoaded = "document.loaded"
	// EventTypeUpdated fires on targeted content mutations.
	EventTypeUpdated = "document.updated"
	// EventTypeLayout fires when metadata.layout changes.
	EventTypeLayout = "document.layout"
	// EventTypeStatus fires on every save-lifecycle transition.
	EventTypeStatus = "document.status"
)

// Well-known origin tags. Components that write layouts (the reconciler) use
// their own instance IDs instead.
const (
	OriginStore  = "store"
	OriginEditor = "editor"
)

// Status is the save-lifecycle state of the document.
type Status uint8

const (
	StatusClean Status = iota
	StatusDirty
	StatusSaving
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusDirty:
		return "dirty"
	case StatusSaving:
		return "saving"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the store's save lifecycle, carried on status
// events and returned by Store.State.
type State struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	LastSaved time.Time `json:"lastSaved"`
	Err       string    `json:"error,omitempty"`
}
