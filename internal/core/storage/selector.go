package storage

import (
	"context"

	"github.com/cvforge/cvforge/internal/core/document"
)

// CapableBackend is a backend with a readiness probe.
type CapableBackend interface {
	Backend
	Ready() bool
}

// Selector routes every call to the primary backend when its probe reports
// ready, and to the fallback otherwise. The probe runs on every call: the
// primary may become ready (or unavailable) mid-session.
type Selector struct {
	primary  CapableBackend
	fallback Backend
}

var _ Backend = (*Selector)(nil)

// NewSelector builds a selector. primary may be nil, in which case the
// fallback always serves.
func NewSelector(primary CapableBackend, fallback Backend) *Selector {
	return &Selector{primary: primary, fallback: fallback}
}

func (s *Selector) active() Backend {
	if s.primary != nil && s.primary.Ready() {
		return s.primary
	}
	return s.fallback
}

func (s *Selector) List(ctx context.Context) ([]string, error) {
	return s.active().List(ctx)
}

func (s *Selector) Get(ctx context.Context, id string) (*document.Resume, error) {
	return s.active().Get(ctx, id)
}

func (s *Selector) Save(ctx context.Context, id string, doc *document.Resume) error {
	return s.active().Save(ctx, id, doc)
}

func (s *Selector) Delete(ctx context.Context, id string) error {
	return s.active().Delete(ctx, id)
}

func (s *Selector) Exists(ctx context.Context, id string) (bool, error) {
	return s.active().Exists(ctx, id)
}
