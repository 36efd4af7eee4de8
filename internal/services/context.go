package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	stageKey   contextKey = "stage"
	speciesKey contextKey = "species"
)

// WithRunID annotates context with the build run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSpecies annotates context with the species key being built.
func WithSpecies(ctx context.Context, species string) context.Context {
	if species == "" {
		return ctx
	}
	return context.WithValue(ctx, speciesKey, species)
}

// SpeciesFromContext returns the species key if present.
func SpeciesFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(speciesKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
