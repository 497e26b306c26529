package pg

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConnectionConfig holds PostgreSQL connection configuration
type ConnectionConfig struct {
	URI             string        `yaml:"uri"`
	MaxConns        int32         `yaml:"maxConns"`
	MinConns        int32         `yaml:"minConns"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime"`
	// ConnectRetry bounds the time spent retrying the first connection
	ConnectRetry time.Duration `yaml:"connectRetry"`
}

// DefaultConnectionConfig returns production-ready defaults
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectRetry:    30 * time.Second,
	}
}

// ConnectionManager owns the PostgreSQL pool
type ConnectionManager struct {
	config ConnectionConfig
	pool   *pgxpool.Pool
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{config: config}
}

// Connect establishes the pool, retrying with exponential backoff while the
// database is not reachable yet
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(cm.config.URI)
	if err != nil {
		return errors.Wrap(err, "failed to parse connection URI")
	}
	if cm.config.MaxConns > 0 {
		poolConfig.MaxConns = cm.config.MaxConns
	}
	poolConfig.MinConns = cm.config.MinConns
	poolConfig.MaxConnLifetime = cm.config.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cm.config.MaxConnIdleTime

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cm.config.ConnectRetry
	var policy backoff.BackOff = bo
	if cm.config.ConnectRetry <= 0 {
		policy = &backoff.StopBackOff{}
	}

	attempt := 0
	connect := func() error {
		attempt++
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "failed to create connection pool"))
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			klog.V(2).InfoS("Database not ready", "attempt", attempt, "error", err)
			return errors.Wrap(err, "failed to ping database")
		}
		cm.pool = pool
		return nil
	}
	if err := backoff.Retry(connect, backoff.WithContext(policy, ctx)); err != nil {
		return err
	}

	klog.V(4).InfoS("PostgreSQL connection established", "attempts", attempt)
	return nil
}

// Close closes the connection pool
func (cm *ConnectionManager) Close() error {
	if cm.pool != nil {
		cm.pool.Close()
		cm.pool = nil
	}
	return nil
}

// Pool returns the current connection pool
func (cm *ConnectionManager) Pool() *pgxpool.Pool {
	return cm.pool
}

// BeginTx starts a new read-committed transaction
func (cm *ConnectionManager) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if cm.pool == nil {
		return nil, errors.New("connection pool not initialized")
	}
	return cm.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
}

// WithTx executes a function within a transaction
func (cm *ConnectionManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := cm.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
