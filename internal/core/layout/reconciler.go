package layout

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cvforge/cvforge/internal/core/document"
	"github.com/cvforge/cvforge/internal/core/events/bus"
	"github.com/cvforge/cvforge/internal/core/observability/log"
	"github.com/cvforge/cvforge/internal/core/store"
)

// Column count bounds for a page.
const (
	MinColumns = 1
	MaxColumns = 3
)

// Announcer receives human-readable messages describing drag transitions for
// assistive technology. It is a required side effect of every drag state
// change, not optional logging.
type Announcer func(message string)

// Config holds reconciler configuration.
type Config struct {
	// PageIndex selects which layout page this reconciler projects.
	PageIndex int
	Announcer Announcer
	Logger    log.Log
}

// Reconciler presents one layout page as a normalized list of columns, lets
// the drag machines mutate it, and writes changes back through the store.
// Its write-backs carry its own ID as the event origin, so the subscription
// that keeps it in sync skips the changes it caused itself.
type Reconciler struct {
	mu sync.Mutex

	id    string
	store *store.Store
	page  int

	known     []document.SectionKey
	cols      []document.Column
	persisted []document.Column

	subs     []bus.Subscription
	announce Announcer
	logger   log.Log

	pointer  *PointerDrag
	keyboard *KeyboardDrag
}

// NewReconciler builds a reconciler over the store and synchronizes it with
// the current document (if any).
func NewReconciler(st *store.Store, cfg Config) (*Reconciler, error) {
	if cfg.PageIndex < 0 {
		return nil, fmt.Errorf("page index %d out of range", cfg.PageIndex)
	}
	if cfg.Announcer == nil {
		cfg.Announcer = func(string) {}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	r := &Reconciler{
		id:       uuid.NewString(),
		store:    st,
		page:     cfg.PageIndex,
		announce: cfg.Announcer,
		logger:   cfg.Logger,
	}
	r.pointer = &PointerDrag{r: r}
	r.keyboard = &KeyboardDrag{r: r}

	for _, eventType := range []string{store.EventTypeLoaded, store.EventTypeLayout} {
		sub, err := st.Bus().Subscribe(eventType, r.onStoreEvent)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("subscribe %s: %w", eventType, err)
		}
		r.subs = append(r.subs, sub)
	}

	r.Resync()
	return r, nil
}

// ID is the reconciler's origin tag: layout events carrying it were caused
// by this reconciler's own write-back.
func (r *Reconciler) ID() string { return r.id }

// Pointer returns the pointer drag session machine.
func (r *Reconciler) Pointer() *PointerDrag { return r.pointer }

// Keyboard returns the keyboard drag session machine.
func (r *Reconciler) Keyboard() *KeyboardDrag { return r.keyboard }

// Close cancels the store subscriptions.
func (r *Reconciler) Close() {
	for _, sub := range r.subs {
		_ = sub.Cancel()
	}
	r.subs = nil
}

// onStoreEvent distinguishes "externally changed" from "caused by my own last
// write" via the event's origin tag. Without the check, every local drag
// mutation would bounce back through the subscription and re-normalize.
func (r *Reconciler) onStoreEvent(e bus.Event) error {
	if e.Source() == r.id {
		return nil
	}
	r.Resync()
	return nil
}

// Resync rebuilds the local projection from the store's document.
func (r *Reconciler) Resync() {
	doc := r.store.Document()

	r.mu.Lock()
	defer r.mu.Unlock()
	if doc == nil {
		r.known = nil
		r.cols = nil
		r.persisted = nil
		return
	}
	r.known = doc.KnownSectionKeys()
	var page document.Page
	if r.page < len(doc.Metadata.Layout) {
		page = doc.Metadata.Layout[r.page]
	}
	r.cols = Normalize(page, r.known)
	r.persisted = cloneColumns(r.cols)
	r.logger.Debug("layout resynced", log.Int("columns", len(r.cols)))
}

// Columns returns a snapshot of the projected columns.
func (r *Reconciler) Columns() []document.Column {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneColumns(r.cols)
}

// SetColumnCount resizes the page to n columns, bounded to [1, 3]. Extra
// columns are flattened, in order, into the new last column. The result is
// re-normalized and persisted.
func (r *Reconciler) SetColumnCount(n int) error {
	if n < MinColumns || n > MaxColumns {
		return fmt.Errorf("column count %d out of range [%d, %d]", n, MinColumns, MaxColumns)
	}
	r.mu.Lock()
	if r.cols == nil {
		r.mu.Unlock()
		return store.ErrNoDocument
	}
	switch {
	case n > len(r.cols):
		for len(r.cols) < n {
			r.cols = append(r.cols, document.Column{})
		}
	case n < len(r.cols):
		last := document.Column{}
		for _, col := range r.cols[n-1:] {
			last = append(last, col...)
		}
		r.cols = append(r.cols[:n-1], last)
	}
	r.cols = Normalize(r.cols, r.known)
	r.mu.Unlock()
	return r.persist()
}

// persist writes the current arrangement back to the store tagged with the
// reconciler's own origin. Persistence failures surface through the store's
// error channel; the in-memory arrangement is kept either way.
func (r *Reconciler) persist() error {
	doc := r.store.Document()
	if doc == nil {
		return store.ErrNoDocument
	}

	r.mu.Lock()
	cols := cloneColumns(r.cols)
	r.persisted = cloneColumns(r.cols)
	page := r.page
	r.mu.Unlock()

	next := doc.Metadata.Layout.Clone()
	for len(next) <= page {
		next = append(next, document.Page{document.Column{}})
	}
	next[page] = document.Page(cols)
	return r.store.UpdateLayoutFrom(r.id, next)
}

// revert discards local edits, restoring the last persisted arrangement.
func (r *Reconciler) revert() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cols = cloneColumns(r.persisted)
}

// locate returns the column and index currently holding key.
func (r *Reconciler) locate(key document.SectionKey) (col, idx int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locateLocked(key)
}

func (r *Reconciler) locateLocked(key document.SectionKey) (col, idx int, ok bool) {
	for c, column := range r.cols {
		for i, k := range column {
			if k == key {
				return c, i, true
			}
		}
	}
	return 0, 0, false
}

// removeLocked unlinks key from whichever column holds it.
func (r *Reconciler) removeLocked(key document.SectionKey) bool {
	c, i, ok := r.locateLocked(key)
	if !ok {
		return false
	}
	col := r.cols[c]
	r.cols[c] = append(col[:i], col[i+1:]...)
	return true
}

// moveBefore places key into column col, before the sibling when given,
// appended otherwise.
func (r *Reconciler) moveBefore(key document.SectionKey, col int, sibling document.SectionKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if col < 0 || col >= len(r.cols) {
		return
	}
	if !r.removeLocked(key) {
		return
	}
	target := r.cols[col]
	at := len(target)
	if sibling != "" {
		for i, k := range target {
			if k == sibling {
				at = i
				break
			}
		}
	}
	target = append(target, "")
	copy(target[at+1:], target[at:])
	target[at] = key
	r.cols[col] = target
}
