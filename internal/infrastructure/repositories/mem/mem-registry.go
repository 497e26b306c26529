package mem

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
)

var (
	_ ports.Registry      = (*Registry)(nil)
	_ ports.SchemaApplier = (*Registry)(nil)
)

// Registry is an in-memory implementation of the Registry interface
type Registry struct {
	db     *MemDB
	opts   writers.Options
	mu     sync.RWMutex
	fail   map[models.TableID]error
	schema []string
	closed bool
}

// NewRegistry creates a new in-memory registry
func NewRegistry(opts writers.Options) *Registry {
	if opts.StatementBufferSize <= 0 {
		opts.StatementBufferSize = writers.DefaultOptions().StatementBufferSize
	}
	return &Registry{
		db:   NewMemDB(),
		opts: opts,
		fail: make(map[models.TableID]error),
	}
}

// DB returns the underlying database
func (r *Registry) DB() *MemDB {
	return r.db
}

// FailWrites makes every later write to table return err
func (r *Registry) FailWrites(table models.TableID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[table] = err
}

func (r *Registry) injected(table models.TableID) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fail[table]
}

// Writer returns a new writer
func (r *Registry) Writer(ctx context.Context) (ports.Writer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, errors.New("registry is closed")
	}
	return &Writer{
		registry: r,
		ctx:      ctx,
		snap:     r.db.begin(),
	}, nil
}

// Reader returns a reader over committed data
func (r *Registry) Reader(_ context.Context) (ports.Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, errors.New("registry is closed")
	}
	return &reader{snap: r.db.snapshot()}, nil
}

// ReaderFromWriter returns a reader that can see changes made in the current transaction
func (r *Registry) ReaderFromWriter(_ context.Context, w ports.Writer) (ports.Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, errors.New("registry is closed")
	}
	memWriter, ok := w.(*Writer)
	if !ok {
		return nil, errors.New("writer is not a memory writer")
	}
	return &reader{snap: memWriter.snap}, nil
}

// ApplySchema records the statements; the in-memory store needs no DDL
func (r *Registry) ApplySchema(_ context.Context, statements []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schema = append(r.schema, statements...)
	return nil
}

// AppliedSchema returns statements passed to ApplySchema
func (r *Registry) AppliedSchema() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.schema...)
}

// Close closes the registry
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
