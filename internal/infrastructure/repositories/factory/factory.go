// Package factory opens the registry selected by configuration
package factory

import (
	"context"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/config"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories/mem"
	"templatesync-pg-backend/internal/infrastructure/repositories/mysql"
	"templatesync-pg-backend/internal/infrastructure/repositories/pg"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
)

// Registry is a registry that can also bootstrap its schema
type Registry interface {
	ports.Registry
	ports.SchemaApplier
}

// NewRegistry creates a registry based on the configured driver
func NewRegistry(ctx context.Context, db config.Database, opts writers.Options) (Registry, error) {
	switch db.Driver {
	case config.DriverMemory:
		return mem.NewRegistry(opts), nil
	case config.DriverPostgres:
		cc := pg.DefaultConnectionConfig()
		cc.URI = db.URI
		cc.MaxConns = db.MaxConns
		cc.MinConns = db.MinConns
		cc.MaxConnLifetime = db.MaxConnLifetime
		cc.MaxConnIdleTime = db.MaxConnIdleTime
		cc.ConnectRetry = db.ConnectRetry
		return pg.NewRegistry(ctx, cc, opts)
	case config.DriverMySQL:
		cc := mysql.DefaultConnectionConfig()
		cc.DSN = db.URI
		cc.MaxOpenConns = int(db.MaxConns)
		cc.MaxIdleConns = int(db.MinConns)
		cc.MaxConnLifetime = db.MaxConnLifetime
		cc.ConnectRetry = db.ConnectRetry
		return mysql.NewRegistry(ctx, cc, opts)
	}
	return nil, errors.Wrapf(ports.ErrUnknownDialect, "driver %q", db.Driver)
}
