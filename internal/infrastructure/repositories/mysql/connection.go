// Package mysql is the MySQL registry built on database/sql and go-sql-driver/mysql
package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	driver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConnectionConfig holds MySQL connection configuration
type ConnectionConfig struct {
	// DSN in go-sql-driver form, e.g. user:pass@tcp(host:3306)/zabbix
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
	ConnectRetry    time.Duration `yaml:"connectRetry"`
}

// DefaultConnectionConfig returns production-ready defaults
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		MaxConnLifetime: time.Hour,
		ConnectRetry:    30 * time.Second,
	}
}

// connect opens the pool and pings it with exponential backoff
func connect(ctx context.Context, config ConnectionConfig) (*sql.DB, error) {
	cfg, err := driver.ParseDSN(config.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse DSN")
	}
	cfg.ParseTime = true
	connector, err := driver.NewConnector(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connector")
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.MaxConnLifetime)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = config.ConnectRetry
	var policy backoff.BackOff = bo
	if config.ConnectRetry <= 0 {
		policy = &backoff.StopBackOff{}
	}

	attempt := 0
	ping := func() error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			klog.V(2).InfoS("Database not ready", "attempt", attempt, "addr", cfg.Addr, "error", err)
			return errors.Wrap(err, "failed to ping database")
		}
		return nil
	}
	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		_ = db.Close()
		return nil, err
	}

	klog.V(4).InfoS("MySQL connection established", "addr", cfg.Addr, "db", cfg.DBName, "attempts", attempt)
	return db, nil
}
