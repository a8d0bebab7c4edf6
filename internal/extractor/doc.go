// Package extractor unpacks archives into destination directories with
// progress reporting, cooperative cancellation, and a disk-space preflight.
//
// An Extractor permits one extraction in flight at a time; a concurrent call
// is rejected with ErrAlreadyInProgress rather than queued. Extraction is
// intentionally sequential per instance to bound peak disk I/O; callers that
// want parallelism create more instances.
//
// Multi-part archives (see partwise/internal/partname) extract in part order
// into a single destination with progress remapped onto the combined totals.
package extractor
