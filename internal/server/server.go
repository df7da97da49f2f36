// Package server exposes the document store to the browser editor: a small
// REST surface for the document lifecycle and a websocket channel pushing
// store events. Rendering and import parsing stay external; this gateway only
// fronts store operations.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cvforge/cvforge/internal/core/document"
	"github.com/cvforge/cvforge/internal/core/observability/log"
	"github.com/cvforge/cvforge/internal/core/storage"
	"github.com/cvforge/cvforge/internal/core/store"
)

// Config holds server configuration.
type Config struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8205",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server is the editor gateway.
type Server struct {
	cfg     Config
	store   *store.Store
	backend storage.Backend
	logger  log.Log

	httpSrv *http.Server
	hub     *hub

	running atomic.Bool
	group   *errgroup.Group
}

// New builds a server over the store and its backend.
func New(st *store.Store, backend storage.Backend, cfg Config, logger log.Log) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		store:   st,
		backend: backend,
		logger:  logger,
		hub:     newHub(logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/resumes", s.handleList)
	mux.HandleFunc("GET /api/resumes/{id}", s.handleGet)
	mux.HandleFunc("POST /api/resumes/{id}", s.handleCreate)
	mux.HandleFunc("PUT /api/resumes/{id}", s.handleImport)
	mux.HandleFunc("DELETE /api/resumes/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/resumes/{id}/save", s.handleForceSave)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /ws", s.hub.handleWebSocket)
	s.httpSrv = &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	return s, nil
}

// Start begins serving and forwarding store events. It returns immediately;
// Stop shuts everything down.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	if err := s.hub.attach(s.store.Bus()); err != nil {
		s.running.Store(false)
		return err
	}

	s.group, _ = errgroup.WithContext(ctx)
	s.group.Go(func() error {
		s.logger.Info("server listening", log.String("addr", s.cfg.ListenAddr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return nil
}

// Stop flushes any pending autosave, closes websocket clients, and shuts the
// HTTP server down.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	// Persist outstanding edits before going away.
	if err := s.store.ForceSave(ctx); err != nil && !errors.Is(err, store.ErrNoDocument) {
		s.logger.Warn("final save failed", log.Error(err))
	}

	s.hub.close()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return err
	}
	return s.group.Wait()
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.backend.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// handleGet loads the resume into the store (navigation) and returns it. A
// missing record is 404 so the client can offer to create one; a corrupted
// record is 422 and must not be treated as absent.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.store.ID() != id {
		if err := s.store.Load(r.Context(), id); err != nil {
			switch {
			case storage.IsNotFound(err):
				s.writeError(w, http.StatusNotFound, err)
			case storage.IsCorrupted(err):
				s.writeError(w, http.StatusUnprocessableEntity, err)
			default:
				s.writeError(w, http.StatusInternalServerError, err)
			}
			return
		}
	}
	s.writeJSON(w, http.StatusOK, s.store.Document())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.store.CreateNew(id)
	s.writeJSON(w, http.StatusCreated, s.store.Document())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := document.Parse(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.Import(doc); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.backend.Delete(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForceSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.store.ID() != id {
		s.writeError(w, http.StatusConflict, errors.New("document is not loaded"))
		return
	}
	if err := s.store.ForceSave(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode failed", log.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
