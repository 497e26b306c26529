package ports

import (
	"context"

	"templatesync-pg-backend/internal/domain/models"
)

type (
	// Scope defines the scope of operations
	Scope interface {
		IsEmpty() bool
		String() string
	}

	// GraphReader reads graphs with their series ordered by item key
	GraphReader interface {
		// ListTemplateGraphs lists graphs whose series use items of the scope's templates
		ListTemplateGraphs(ctx context.Context, consume func(models.Graph) error, scope LinkScope) error
		// ListHostGraphs lists templated graphs of the host matching the scope's names or template graph ids
		ListHostGraphs(ctx context.Context, consume func(models.Graph) error, scope HostGraphScope) error
	}

	// ItemReader resolves items across the template/host id spaces
	ItemReader interface {
		// ResolveItemKeys maps template item ids onto host item ids with the same key.
		// Ids without a counterpart are omitted.
		ResolveItemKeys(ctx context.Context, hostID uint64, itemIDs []uint64) (map[uint64]uint64, error)
	}

	// HostPrototypeReader reads host prototypes and their owned collections
	HostPrototypeReader interface {
		// GetHostFlags returns hosts.flags or ErrNotFound
		GetHostFlags(ctx context.Context, hostID uint64) (int, error)
		// ListTemplateHostPrototypes lists template prototypes keyed by the host rules inheriting their rules
		ListTemplateHostPrototypes(ctx context.Context, consume func(models.HostPrototype) error, scope LinkScope) error
		// ListHostPrototypes lists prototypes owned by the scope's discovery rules
		ListHostPrototypes(ctx context.Context, consume func(models.HostPrototype) error, scope RuleScope) error
		// ListDiscoveredGroupIDs lists host groups discovered from the group prototypes
		ListDiscoveredGroupIDs(ctx context.Context, groupPrototypeIDs []uint64) ([]uint64, error)
	}

	// ReaderNoClose defines read operations without close
	ReaderNoClose interface {
		GraphReader
		ItemReader
		HostPrototypeReader
	}

	// Reader defines read operations
	Reader interface {
		ReaderNoClose
		Close() error
	}

	// StatementWriter is the batched write executor
	StatementWriter interface {
		// AppendStatement buffers stmt; the buffer is flushed once its size
		// threshold is exceeded. Statement order is preserved.
		AppendStatement(ctx context.Context, stmt Statement) error
		// Flush executes every buffered statement
		Flush(ctx context.Context) error
		// PrepareBulkInsert starts a multi-row insert into table
		PrepareBulkInsert(table models.TableID, columns ...string) BulkInsert
	}

	// IDAllocator hands out contiguous id blocks
	IDAllocator interface {
		// ReserveIDs reserves count consecutive ids of table and returns the first
		ReserveIDs(ctx context.Context, table models.TableID, count int) (uint64, error)
	}

	// Writer defines write operations
	Writer interface {
		StatementWriter
		IDAllocator

		// AffectedRows returns rows touched by executed statements so far
		AffectedRows() int64

		Commit() error
		Abort()
	}

	// BulkInsert accumulates rows for one table
	BulkInsert interface {
		AddRow(values ...any)
		Rows() int
		Execute(ctx context.Context) error
	}

	// Registry defines the registry interface
	Registry interface {
		Writer(ctx context.Context) (Writer, error)
		Reader(ctx context.Context) (Reader, error)
		// ReaderFromWriter returns a reader that can see changes made in the current transaction
		ReaderFromWriter(ctx context.Context, writer Writer) (Reader, error)
		Close() error
	}

	// SchemaApplier executes DDL in one transaction
	SchemaApplier interface {
		ApplySchema(ctx context.Context, statements []string) error
	}

	// AuditEmitter receives one call per created or deleted entity and one
	// call per changed field. Secret values arrive already masked.
	AuditEmitter interface {
		Create(resource models.AuditResource, entityID uint64, name string)
		Delete(resource models.AuditResource, entityID uint64, name string)
		UpdateField(resource models.AuditResource, entityID uint64, field string, oldValue, newValue any)
	}
)
