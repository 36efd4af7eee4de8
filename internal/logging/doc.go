// Package logging assembles structured slog loggers used across refbuild.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context-aware helpers that tag log lines with the run identifier, species
// and pipeline stage. NewNop provides a silent logger for tests and wiring
// code that cannot fail.
package logging
