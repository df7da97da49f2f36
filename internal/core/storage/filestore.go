package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/cvforge/cvforge/internal/core/document"
	"github.com/cvforge/cvforge/internal/core/observability/log"
)

const (
	indexFile  = "_ids.json"
	recordExt  = ".json"
	recordPerm = 0o644
	dirPerm    = 0o755
)

// fileRecord is the on-disk envelope around a serialized document. Sum is the
// xxhash of the Doc bytes; a mismatch means the record was torn or edited.
type fileRecord struct {
	Sum     string          `json:"sum"`
	SavedAt time.Time       `json:"savedAt"`
	Doc     json.RawMessage `json:"doc"`
}

// FileBackend is the durable fallback: one JSON file per document under a
// root directory, plus an _ids index used for listing.
type FileBackend struct {
	mu     sync.Mutex
	root   string
	logger log.Log
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend creates the root directory if needed and returns a backend
// over it.
func NewFileBackend(root string, logger log.Log) (*FileBackend, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &FileBackend{root: root, logger: logger}, nil
}

func (b *FileBackend) List(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readIndexLocked(), nil
}

func (b *FileBackend) Get(_ context.Context, id string) (*document.Resume, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("read record %q: %w", id, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &CorruptedError{ID: id, Cause: err}
	}
	if sum := checksum(rec.Doc); sum != rec.Sum {
		return nil, &CorruptedError{ID: id, Cause: fmt.Errorf("checksum mismatch: have %s, want %s", sum, rec.Sum)}
	}
	doc, err := document.Parse(rec.Doc)
	if err != nil {
		return nil, &CorruptedError{ID: id, Cause: err}
	}
	return doc, nil
}

func (b *FileBackend) Save(_ context.Context, id string, doc *document.Resume) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode resume: %w", err)
	}
	rec := fileRecord{Sum: checksum(raw), SavedAt: time.Now().UTC(), Doc: raw}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := writeFileAtomic(b.recordPath(id), data); err != nil {
		return fmt.Errorf("write record %q: %w", id, err)
	}
	ids := b.readIndexLocked()
	for _, known := range ids {
		if known == id {
			return nil
		}
	}
	ids = append(ids, id)
	sort.Strings(ids)
	return b.writeIndexLocked(ids)
}

func (b *FileBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.recordPath(id)); err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{ID: id}
		}
		return fmt.Errorf("delete record %q: %w", id, err)
	}
	ids := b.readIndexLocked()
	kept := ids[:0]
	for _, known := range ids {
		if known != id {
			kept = append(kept, known)
		}
	}
	return b.writeIndexLocked(kept)
}

func (b *FileBackend) Exists(_ context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := os.Stat(b.recordPath(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat record %q: %w", id, err)
}

func (b *FileBackend) recordPath(id string) string {
	return filepath.Join(b.root, id+recordExt)
}

// readIndexLocked returns the ID index. Index corruption is non-fatal: the
// index resets to empty with a warning, never a hard failure.
func (b *FileBackend) readIndexLocked() []string {
	data, err := os.ReadFile(filepath.Join(b.root, indexFile))
	if err != nil {
		if !os.IsNotExist(err) {
			b.logger.Warn("unreadable id index, resetting", log.Error(err))
		}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		b.logger.Warn("corrupt id index, resetting", log.Error(err))
		return nil
	}
	return ids
}

func (b *FileBackend) writeIndexLocked(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode id index: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(b.root, indexFile), data); err != nil {
		return fmt.Errorf("write id index: %w", err)
	}
	return nil
}

func checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// writeFileAtomic writes via a temp file and rename so readers never observe
// a half-written record.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, recordPerm); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
