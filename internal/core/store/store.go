// Package store owns the live resume document and its save lifecycle. All
// mutations flow through the Store, which marks the document dirty, reschedules
// the coalescing autosave, and publishes origin-tagged events on the bus.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/cvforge/cvforge/internal/core/document"
	"github.com/cvforge/cvforge/internal/core/events/bus"
	"github.com/cvforge/cvforge/internal/core/observability/log"
	"github.com/cvforge/cvforge/internal/core/storage"
)

// ErrNoDocument is returned by mutations before a document has been loaded
// or created.
var ErrNoDocument = errors.New("no document loaded")

// Config holds store configuration.
type Config struct {
	// AutosaveDelay is the debounce window. Every mutation restarts it; the
	// save fires once mutations stop for the full window.
	AutosaveDelay time.Duration
	Logger        log.Log
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{AutosaveDelay: 1000 * time.Millisecond}
}

// Store is the single owner of the live document. It is safe for concurrent
// use; every mutation is atomic with respect to reads.
type Store struct {
	mu sync.Mutex

	id  string
	doc *document.Resume

	status    Status
	lastSaved time.Time
	errMsg    string

	backend  storage.Backend
	bus      bus.EventBus
	logger   log.Log
	autosave *Debouncer
	loads    singleflight.Group
}

// New builds a store over the given backend. events may be nil, in which case
// a private bus is created.
func New(backend storage.Backend, events bus.EventBus, cfg Config) *Store {
	if events == nil {
		events = bus.New()
	}
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = DefaultConfig().AutosaveDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	s := &Store{
		backend:  backend,
		bus:      events,
		logger:   cfg.Logger,
		autosave: NewDebouncer(cfg.AutosaveDelay),
	}
	return s
}

// Bus exposes the event bus so collaborators (reconciler, server) can
// subscribe.
func (s *Store) Bus() bus.EventBus { return s.bus }

// ID returns the ID of the current document, or "" before load/create.
func (s *Store) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Document returns a deep copy of the current document, or nil before
// load/create.
func (s *Store) Document() *document.Resume {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.Clone()
}

// State returns a snapshot of the save lifecycle.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	return State{ID: s.id, Status: s.status, LastSaved: s.lastSaved, Err: s.errMsg}
}

// Load fetches the document for id from the backend and replaces the
// in-memory document on success. On failure the previous in-memory document
// is untouched: the typed error is returned to the caller and recorded on the
// store for passive observers. Concurrent loads of the same id are
// deduplicated.
func (s *Store) Load(ctx context.Context, id string) error {
	v, err, _ := s.loads.Do(id, func() (any, error) {
		return s.backend.Get(ctx, id)
	})
	if err != nil {
		s.mu.Lock()
		s.errMsg = err.Error()
		state := s.stateLocked()
		s.mu.Unlock()
		s.logger.Warn("load failed", log.String("id", id), log.Error(err))
		s.publish(EventTypeStatus, OriginStore, state)
		return err
	}

	doc := v.(*document.Resume)
	s.mu.Lock()
	s.autosave.Cancel()
	s.id = id
	s.doc = doc.Clone()
	s.status = StatusClean
	s.errMsg = ""
	s.mu.Unlock()

	s.logger.Info("document loaded", log.String("id", id))
	s.publish(EventTypeLoaded, OriginStore, id)
	return nil
}

// CreateNew synthesizes a default document under id, marks it dirty, and
// schedules a save. It never fails.
func (s *Store) CreateNew(id string) {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	s.id = id
	s.doc = document.New()
	s.errMsg = ""
	s.markDirtyLocked()
	s.mu.Unlock()

	s.logger.Info("document created", log.String("id", id))
	s.publish(EventTypeLoaded, OriginStore, id)
}

// Import replaces the document wholesale (format-converted input), marks
// dirty, and schedules a save.
func (s *Store) Import(doc *document.Resume) error {
	if doc == nil {
		return errors.New("import: nil document")
	}
	s.mu.Lock()
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.doc = doc.Clone()
	s.markDirtyLocked()
	id := s.id
	s.mu.Unlock()

	s.logger.Info("document imported", log.String("id", id))
	s.publish(EventTypeLoaded, OriginStore, id)
	return nil
}

// UpdateBasics writes one scalar profile field.
func (s *Store) UpdateBasics(field document.BasicsField, value string) error {
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		return field.Set(&doc.Basics, value)
	})
}

// UpdateSummary replaces the summary content.
func (s *Store) UpdateSummary(content string) error {
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		doc.Sections.Summary.Content = content
		return nil
	})
}

// UpdateMetadata writes one scalar metadata field.
func (s *Store) UpdateMetadata(field document.MetadataField, value string) error {
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		return field.Set(&doc.Metadata, value)
	})
}

// UpdateTemplate switches the template.
func (s *Store) UpdateTemplate(id string) error {
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		doc.Metadata.Template = id
		return nil
	})
}

// UpdateTheme merges a partial theme update.
func (s *Store) UpdateTheme(patch document.ThemePatch) error {
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		patch.Apply(&doc.Metadata.Theme)
		return nil
	})
}

// UpdateLayout replaces the layout on behalf of the editor UI.
func (s *Store) UpdateLayout(layout document.Layout) error {
	return s.UpdateLayoutFrom(OriginEditor, layout)
}

// UpdateLayoutFrom replaces the layout, tagging the resulting event with the
// caller's origin. The reconciler passes its own ID here so its subscription
// can recognize and skip the write-back it caused.
func (s *Store) UpdateLayoutFrom(origin string, layout document.Layout) error {
	return s.mutate(EventTypeLayout, origin, func(doc *document.Resume) error {
		doc.Metadata.Layout = layout.Clone()
		return nil
	})
}

// AddSectionItem appends an item to an item-bearing section. A missing item
// ID is filled with a fresh UUID.
func (s *Store) AddSectionItem(key document.SectionKey, item document.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		return doc.Sections.Update(key, func(sec *document.Section) error {
			sec.Items = append(sec.Items, item)
			return nil
		})
	})
}

// ItemPatch is a partial update to a section item; nil fields are left
// untouched and Data keys merge over the existing map.
type ItemPatch struct {
	Visible *bool
	Data    map[string]any
}

// UpdateSectionItem applies a partial update to the item at index.
func (s *Store) UpdateSectionItem(key document.SectionKey, index int, patch ItemPatch) error {
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		return doc.Sections.Update(key, func(sec *document.Section) error {
			if index < 0 || index >= len(sec.Items) {
				return fmt.Errorf("item index %d out of range for section %s", index, key)
			}
			it := &sec.Items[index]
			if patch.Visible != nil {
				it.Visible = *patch.Visible
			}
			if len(patch.Data) > 0 {
				if it.Data == nil {
					it.Data = make(map[string]any, len(patch.Data))
				}
				for k, v := range patch.Data {
					it.Data[k] = v
				}
			}
			return nil
		})
	})
}

// RemoveSectionItem deletes the item at index.
func (s *Store) RemoveSectionItem(key document.SectionKey, index int) error {
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		return doc.Sections.Update(key, func(sec *document.Section) error {
			if index < 0 || index >= len(sec.Items) {
				return fmt.Errorf("item index %d out of range for section %s", index, key)
			}
			sec.Items = append(sec.Items[:index], sec.Items[index+1:]...)
			return nil
		})
	})
}

// ReorderSectionItem removes the item at from and reinserts it at to. The
// target index is interpreted against the list after removal, so a
// reorder(i, j) followed by reorder(j, i) restores the original order.
func (s *Store) ReorderSectionItem(key document.SectionKey, from, to int) error {
	return s.mutate(EventTypeUpdated, OriginEditor, func(doc *document.Resume) error {
		return doc.Sections.Update(key, func(sec *document.Section) error {
			n := len(sec.Items)
			if from < 0 || from >= n {
				return fmt.Errorf("item index %d out of range for section %s", from, key)
			}
			if to < 0 || to >= n {
				return fmt.Errorf("item index %d out of range for section %s", to, key)
			}
			it := sec.Items[from]
			rest := append(sec.Items[:from], sec.Items[from+1:]...)
			rest = append(rest, document.Item{})
			copy(rest[to+1:], rest[to:])
			rest[to] = it
			sec.Items = rest
			return nil
		})
	})
}

// ForceSave cancels any pending autosave and persists immediately. Unlike
// background saves, the error is returned to the caller as well as recorded.
// Before a document is loaded it returns ErrNoDocument.
func (s *Store) ForceSave(ctx context.Context) error {
	s.autosave.Cancel()
	return s.saveNow(ctx)
}

// Close tears the store down, dropping any pending autosave.
func (s *Store) Close() {
	s.autosave.Cancel()
}

func (s *Store) mutate(eventType, origin string, fn func(*document.Resume) error) error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	if err := fn(s.doc); err != nil {
		s.mu.Unlock()
		return err
	}
	s.markDirtyLocked()
	var data any
	if eventType == EventTypeLayout {
		data = s.doc.Metadata.Layout.Clone()
	} else {
		data = s.id
	}
	s.mu.Unlock()

	s.publish(eventType, origin, data)
	return nil
}

// markDirtyLocked transitions to dirty and restarts the autosave window.
func (s *Store) markDirtyLocked() {
	s.status = StatusDirty
	s.autosave.Reset(func() {
		if err := s.saveNow(context.Background()); err != nil {
			// Background save: the error is recorded on the store, never
			// thrown, because autosave has no synchronous caller.
			s.logger.Warn("autosave failed", log.Error(err))
		}
	})
}

// saveNow persists a snapshot of the current document. Overlapping saves are
// not serialized; last write wins.
func (s *Store) saveNow(ctx context.Context) error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	id := s.id
	snapshot := s.doc.Clone()
	s.status = StatusSaving
	state := s.stateLocked()
	s.mu.Unlock()
	s.publish(EventTypeStatus, OriginStore, state)

	err := s.backend.Save(ctx, id, snapshot)

	s.mu.Lock()
	if err != nil {
		s.status = StatusError
		s.errMsg = err.Error()
	} else {
		s.lastSaved = time.Now()
		s.errMsg = ""
		// A mutation during the write re-dirtied the store; keep that.
		if s.status == StatusSaving {
			s.status = StatusClean
		}
	}
	state = s.stateLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("save failed", log.String("id", id), log.Error(err))
	} else {
		s.logger.Debug("document saved", log.String("id", id))
	}
	s.publish(EventTypeStatus, OriginStore, state)
	return err
}

func (s *Store) publish(eventType, origin string, data any) {
	if err := s.bus.Publish(bus.NewEvent(eventType, origin, data)); err != nil {
		s.logger.Warn("event delivery failed", log.String("type", eventType), log.Error(err))
	}
}
