package mysql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/readers"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
)

var (
	_ ports.Registry      = (*Registry)(nil)
	_ ports.SchemaApplier = (*Registry)(nil)
)

// Registry implements ports.Registry on MySQL
type Registry struct {
	db   *sql.DB
	d    dialect.Dialect
	opts writers.Options
}

// NewRegistry connects to MySQL and creates the registry
func NewRegistry(ctx context.Context, config ConnectionConfig, opts writers.Options) (*Registry, error) {
	db, err := connect(ctx, config)
	if err != nil {
		return nil, errors.WithMessage(err, "NewRegistry connect")
	}
	return &Registry{db: db, d: dialect.MySQL{}, opts: opts}, nil
}

// Writer begins a read-committed transaction
func (r *Registry) Writer(ctx context.Context) (ports.Writer, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to begin transaction")
	}
	return writers.NewWriter(ctx, txAdapter{tx: tx}, r.d, r.opts), nil
}

// Reader returns a reader running on pooled connections
func (r *Registry) Reader(_ context.Context) (ports.Reader, error) {
	return readers.NewReader(dbQuerier{db: r.db}, r.d, nil), nil
}

// ReaderFromWriter creates a reader that uses the same transaction as the writer
func (r *Registry) ReaderFromWriter(_ context.Context, w ports.Writer) (ports.Reader, error) {
	sw, ok := w.(*writers.Writer)
	if !ok {
		return nil, errors.Errorf("writer %T is not a MySQL writer", w)
	}
	return readers.NewReader(sw.Tx(), r.d, nil), nil
}

// ApplySchema executes DDL statements. MySQL commits DDL implicitly, so a
// failure leaves the statements before it applied.
func (r *Registry) ApplySchema(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		klog.V(4).InfoS("Applying DDL", "statement", stmt)
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to execute %q", stmt)
		}
	}
	return nil
}

// Close closes the pool
func (r *Registry) Close() error {
	return r.db.Close()
}
