package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownSpecies     = errors.New("unknown species")
	ErrUnsupportedRelease = errors.New("unsupported release")
	ErrTransfer           = errors.New("transfer failure")
	ErrMalformedReference = errors.New("malformed reference")
	ErrAnnotationMismatch = errors.New("annotation mismatch")
	ErrExternalTool       = errors.New("external tool error")
	ErrFilesystem         = errors.New("filesystem error")
	ErrConfiguration      = errors.New("configuration error")
	ErrValidation         = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsConfiguration reports whether err was raised while resolving the run
// configuration, before any network or filesystem side effect.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrUnknownSpecies) ||
		errors.Is(err, ErrUnsupportedRelease) ||
		errors.Is(err, ErrConfiguration)
}

// Kind returns a short label for the marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownSpecies):
		return "unknown_species"
	case errors.Is(err, ErrUnsupportedRelease):
		return "unsupported_release"
	case errors.Is(err, ErrTransfer):
		return "transfer_failure"
	case errors.Is(err, ErrMalformedReference):
		return "malformed_reference"
	case errors.Is(err, ErrAnnotationMismatch):
		return "annotation_mismatch"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrFilesystem):
		return "filesystem"
	default:
		return "external_tool"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
