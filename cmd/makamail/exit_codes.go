package main

import (
	"errors"
	"os"

	makamail "github.com/quentin/makamail"
	"github.com/quentin/makamail/internal/config"
)

// Exit codes for the makamail CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful composition
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input document
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitTool    = 4 // External tool (ImageMagick, file) failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// External tool errors (exit 4)
	if errors.Is(err, makamail.ErrTransform) {
		return ExitTool
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/input errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, makamail.ErrEmptySource) ||
		errors.Is(err, makamail.ErrInvalidExtension) ||
		errors.Is(err, makamail.ErrParse) ||
		errors.Is(err, makamail.ErrConversion) ||
		errors.Is(err, makamail.ErrUnsupportedEncoding) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}
