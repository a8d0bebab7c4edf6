package services

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	datasetKey  contextKey = "dataset"
	categoryKey contextKey = "category"
)

// WithRunID annotates context with the extraction run identifier.
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

// WithDataset annotates context with the dataset name.
func WithDataset(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, datasetKey, name)
}

// DatasetFromContext returns the dataset name if present.
func DatasetFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(datasetKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCategory annotates context with the category currently being extracted.
func WithCategory(ctx context.Context, category string) context.Context {
	if category == "" {
		return ctx
	}
	return context.WithValue(ctx, categoryKey, category)
}

// CategoryFromContext returns the category name if present.
func CategoryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(categoryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
