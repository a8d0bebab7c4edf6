// Package preflight provides readiness checks for the filesystem paths the
// extraction pipeline depends on.
//
// These checks run in two contexts:
//   - The extractor queries free space before writing anything, so a doomed
//     extraction fails before it has touched the destination.
//   - The CLI "partwise preflight" command runs the full set and renders the
//     results for the operator.
package preflight
