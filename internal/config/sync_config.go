package config

import (
	"time"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
)

// SyncConfig holds configuration of link passes
type SyncConfig struct {
	// ProgramType is the daemon owning the database: server or proxy
	ProgramType string `yaml:"program-type" env:"SYNC_PROGRAM_TYPE"`

	// StatementBufferSize is the buffered statement size in bytes that triggers a flush
	StatementBufferSize int `yaml:"statement-buffer-size" env:"SYNC_STATEMENT_BUFFER_SIZE"`

	// BulkChunkRows is the maximum number of rows sent by one bulk insert round-trip
	BulkChunkRows int `yaml:"bulk-chunk-rows" env:"SYNC_BULK_CHUNK_ROWS"`

	// PassRate limits passes per second across hosts; 0 disables the limit
	PassRate float64 `yaml:"pass-rate" env:"SYNC_PASS_RATE"`

	// PassBurst is the number of passes allowed at once
	PassBurst int `yaml:"pass-burst" env:"SYNC_PASS_BURST"`

	// PassTimeout bounds one host pass; 0 disables the timeout
	PassTimeout time.Duration `yaml:"pass-timeout" env:"SYNC_PASS_TIMEOUT"`
}

// DefaultSyncConfig returns default synchronization configuration
func DefaultSyncConfig() SyncConfig {
	opts := writers.DefaultOptions()
	return SyncConfig{
		ProgramType:         string(models.ProgramServer),
		StatementBufferSize: opts.StatementBufferSize,
		BulkChunkRows:       opts.BulkChunkRows,
		PassRate:            0,
		PassBurst:           1,
		PassTimeout:         5 * time.Minute,
	}
}

// Program returns the parsed program type
func (c *SyncConfig) Program() (models.ProgramType, error) {
	return models.ParseProgramType(c.ProgramType)
}

// WriterOptions returns the batched writer settings
func (c *SyncConfig) WriterOptions() writers.Options {
	return writers.Options{
		StatementBufferSize: c.StatementBufferSize,
		BulkChunkRows:       c.BulkChunkRows,
	}
}

// Validate validates the sync configuration
func (c *SyncConfig) Validate() error {
	if _, err := c.Program(); err != nil {
		return err
	}
	if c.StatementBufferSize <= 0 {
		return errors.New("statement-buffer-size must be > 0")
	}
	if c.BulkChunkRows <= 0 {
		return errors.New("bulk-chunk-rows must be > 0")
	}
	if c.PassRate < 0 {
		return errors.New("pass-rate must be >= 0")
	}
	if c.PassRate > 0 && c.PassBurst <= 0 {
		return errors.New("pass-burst must be > 0 when pass-rate is set")
	}
	if c.PassTimeout < 0 {
		return errors.New("pass-timeout must be >= 0")
	}
	return nil
}
