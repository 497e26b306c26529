package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/readers"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
)

// Compile-time check that Registry implements ports.Registry
var (
	_ ports.Registry      = (*Registry)(nil)
	_ ports.SchemaApplier = (*Registry)(nil)
)

// Registry implements the PostgreSQL-based registry
type Registry struct {
	cm   *ConnectionManager
	d    dialect.Dialect
	opts writers.Options
}

// NewRegistry connects to PostgreSQL and creates the registry
func NewRegistry(ctx context.Context, config ConnectionConfig, opts writers.Options) (*Registry, error) {
	cm := NewConnectionManager(config)
	if err := cm.Connect(ctx); err != nil {
		return nil, errors.WithMessage(err, "NewRegistry connect")
	}
	return &Registry{
		cm:   cm,
		d:    dialect.Postgres{},
		opts: opts,
	}, nil
}

// Writer begins a transaction and returns the batched writer bound to it
func (r *Registry) Writer(ctx context.Context) (ports.Writer, error) {
	tx, err := r.cm.BeginTx(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to begin transaction")
	}
	return writers.NewWriter(ctx, txAdapter{tx: tx}, r.d, r.opts), nil
}

// Reader returns a reader running on pooled connections
func (r *Registry) Reader(_ context.Context) (ports.Reader, error) {
	pool := r.cm.Pool()
	if pool == nil {
		return nil, errors.New("registry pool is nil")
	}
	return readers.NewReader(poolQuerier{pool: pool}, r.d, nil), nil
}

// ReaderFromWriter creates a reader that uses the same transaction as the writer
func (r *Registry) ReaderFromWriter(_ context.Context, w ports.Writer) (ports.Reader, error) {
	sw, ok := w.(*writers.Writer)
	if !ok {
		return nil, errors.Errorf("writer %T is not a PostgreSQL writer", w)
	}
	return readers.NewReader(sw.Tx(), r.d, nil), nil
}

// ApplySchema executes DDL statements in one transaction
func (r *Registry) ApplySchema(ctx context.Context, statements []string) error {
	return r.cm.WithTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range statements {
			klog.V(4).InfoS("Applying DDL", "statement", stmt)
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return errors.Wrapf(err, "failed to execute %q", stmt)
			}
		}
		return nil
	})
}

// Close closes the registry and its connections
func (r *Registry) Close() error {
	return r.cm.Close()
}
