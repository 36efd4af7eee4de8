// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and species keys
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     configuration failures (which abort before any side effect) apart from
//     transfer, reference, and external tool failures.
//
// Use these helpers when wiring new stage logic so error reporting stays
// uniform across the pipeline.
package services
