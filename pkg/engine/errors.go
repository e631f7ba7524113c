// pkg/engine/errors.go
package engine

import "errors"

// Engine errors checked with errors.Is().

var (
	// ErrModuleNotFound is returned when a module name is not registered.
	// HTTP status: 404
	ErrModuleNotFound = errors.New("module not found")

	// ErrInvalidParams is returned when required parameters are missing or
	// malformed. Never retried.
	// HTTP status: 400
	ErrInvalidParams = errors.New("missing required parameters")

	// ErrInvalidInput classifies a module-level rejection of its inputs,
	// as opposed to a transient I/O failure.
	// HTTP status: 400
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoConfig is returned when configuration is read from or written to
	// a module that does not declare one.
	// HTTP status: 400
	ErrNoConfig = errors.New("module has no configuration")

	// ErrForbidden is returned for administrative operations attempted by a
	// non-administrative caller.
	// HTTP status: 403
	ErrForbidden = errors.New("forbidden")

	// ErrConfigSave is returned when a configuration document cannot be
	// persisted.
	// HTTP status: 500
	ErrConfigSave = errors.New("failed to save configuration")
)

// HTTPStatus maps engine errors to HTTP status codes for the API layer.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrModuleNotFound):
		return 404
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNoConfig):
		return 400
	default:
		return 500
	}
}
