package errors

import (
	"math"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateEnum checks that value is one of allowed. field names the
// rejected attribute in the error message (e.g. "originX").
func ValidateEnum(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(ErrCodeInvalidPosition, "invalid %s %q (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}

// ValidateLength checks that a configured length (margin, min/max size,
// offset) is a finite number, and non-negative unless signed is true.
func ValidateLength(field string, v float64, signed bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be a finite number", field)
	}
	if !signed && v < 0 {
		return New(ErrCodeInvalidConfig, "%s cannot be negative (got %g)", field, v)
	}
	return nil
}

// ValidateSizeRange checks that a minimum does not exceed a maximum.
// Zero means unset on either side.
func ValidateSizeRange(field string, lo, hi float64) error {
	if lo > 0 && hi > 0 && lo > hi {
		return New(ErrCodeInvalidConfig, "min%s (%g) exceeds max%s (%g)", field, lo, field, hi)
	}
	return nil
}

// ValidateOverlayID validates an overlay session identifier received over
// the API. Identifiers are UUIDs issued by the session store.
func ValidateOverlayID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "overlay id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "overlay id %q is not a valid UUID", id)
	}
	return nil
}

// ValidateScenarioPath validates a scenario file path given on the
// command line. It rejects control characters and unsupported extensions.
func ValidateScenarioPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "scenario path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".json":
		return nil
	default:
		return New(ErrCodeInvalidPath, "unsupported scenario extension %q (must be .toml or .json)", filepath.Ext(path))
	}
}

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string, supported ...string) error {
	if slices.Contains(supported, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (must be one of: %s)", format, strings.Join(supported, ", "))
}
