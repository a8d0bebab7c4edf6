// Package logging configures slog output for the extraction pipeline.
//
// It provides a console handler that hoists the component attribute into the
// message prefix, a JSON handler for machine consumption, typed attribute
// helpers, and context-derived correlation fields (run id, dataset, category).
package logging
