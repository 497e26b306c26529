package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

type (
	// Config - основная конфигурация приложения
	Config struct {
		App      `yaml:"app"`
		Log      `yaml:"logger"`
		Database Database   `yaml:"database"`
		Sync     SyncConfig `yaml:"sync"`
		Metrics  Metrics    `yaml:"metrics"`
	}

	// App - конфигурация приложения
	App struct {
		Name    string `yaml:"name" env:"APP_NAME"`
		Version string `yaml:"version" env:"APP_VERSION"`
	}

	// Log - конфигурация логирования
	Log struct {
		Level string `yaml:"log-level" env:"LOG_LEVEL"`
	}

	// Database selects the driver and sizes its connection pool
	Database struct {
		Driver string `yaml:"driver" env:"DB_DRIVER"`
		// URI is a postgres connection string or a go-sql-driver DSN
		URI             string        `yaml:"uri" env:"DB_URI"`
		MaxConns        int32         `yaml:"max-conns" env:"DB_MAX_CONNS"`
		MinConns        int32         `yaml:"min-conns" env:"DB_MIN_CONNS"`
		MaxConnLifetime time.Duration `yaml:"max-conn-lifetime" env:"DB_MAX_CONN_LIFETIME"`
		MaxConnIdleTime time.Duration `yaml:"max-conn-idle-time" env:"DB_MAX_CONN_IDLE_TIME"`
		ConnectRetry    time.Duration `yaml:"connect-retry" env:"DB_CONNECT_RETRY"`
	}

	// Metrics - выгрузка метрик в textfile для node_exporter
	Metrics struct {
		TextFile string `yaml:"textfile" env:"METRICS_TEXTFILE"`
	}
)

// NewConfig создает новую конфигурацию
func NewConfig(path string) (*Config, error) {
	cfg := &Config{}

	// Установка значений по умолчанию
	cfg.App.Name = "templatesync"
	cfg.App.Version = "v1.0.0"
	cfg.Log.Level = "info"
	cfg.Database = DefaultDatabase()
	cfg.Sync = DefaultSyncConfig()

	// Загрузка из файла конфигурации
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, errors.Wrap(err, "config error")
		}
	}

	// Загрузка из переменных окружения
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "config env error")
	}

	return cfg, nil
}

// DefaultDatabase returns pool defaults for the memory driver
func DefaultDatabase() Database {
	return Database{
		Driver:          DriverMemory,
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectRetry:    30 * time.Second,
	}
}

// Verbosity maps the log level onto a klog verbosity
func (l Log) Verbosity() (int, error) {
	switch strings.ToLower(l.Level) {
	case "", "info", "warn", "error":
		return 0, nil
	case "debug":
		return 4, nil
	case "trace":
		return 6, nil
	}
	v, err := strconv.Atoi(l.Level)
	if err != nil || v < 0 {
		return 0, errors.Errorf("unknown log level %q", l.Level)
	}
	return v, nil
}

// Validate валидирует конфигурацию
func (c *Config) Validate() error {
	if _, err := c.Log.Verbosity(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return errors.WithMessage(err, "database config validation failed")
	}
	if err := c.Sync.Validate(); err != nil {
		return errors.WithMessage(err, "sync config validation failed")
	}
	return nil
}

// Validate validates the database configuration
func (d *Database) Validate() error {
	switch d.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres, DriverMySQL:
	default:
		return errors.Errorf("unknown driver %q", d.Driver)
	}
	if d.URI == "" {
		return errors.Errorf("uri is required for driver %s", d.Driver)
	}
	if d.MaxConns <= 0 {
		return errors.New("max-conns must be > 0")
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		return errors.New("min-conns must be within [0, max-conns]")
	}
	if d.ConnectRetry < 0 {
		return errors.New("connect-retry must be >= 0")
	}
	return nil
}
