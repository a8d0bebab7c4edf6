// Package services defines shared utilities consumed across the extraction
// pipeline.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, dataset names, and category
//     names for logging correlation.
//   - Structured error markers plus the Wrap helper so failures read the same
//     way whether they come from the extractor, the ledger, or the CLI.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services
