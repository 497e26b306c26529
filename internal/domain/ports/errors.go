package ports

import "github.com/pkg/errors"

// Standard repository errors
var (
	// ErrNotFound is returned when the requested entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrProxyMode is returned when template linking is requested on a proxy database
	ErrProxyMode = errors.New("template linking is not available on a proxy")

	// ErrUnknownDialect is returned for an unsupported database driver
	ErrUnknownDialect = errors.New("unknown database dialect")
)
