//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/cvforge/cvforge/internal/core/events/bus"
	"github.com/cvforge/cvforge/internal/core/storage"
	"github.com/cvforge/cvforge/internal/core/store"
)

// ProvideStore assembles a document store with a fresh event bus.
func ProvideStore(backend storage.Backend, cfg store.Config) *store.Store {
	wire.Build(bus.New, store.New)
	return nil
}
