package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"partwise/internal/logging"
	"partwise/internal/partname"
)

// ExtractMultiPart unpacks an ordered sequence of part archives into one
// destination directory. Parts always extract in ascending part-index order
// regardless of input order, with overwrite semantics (last write wins on
// colliding paths). Progress callbacks reflect position within the combined
// totals of all parts.
//
// A failure partway through does not roll back files written by earlier
// parts; the caller owns any cleanup of the partially merged destination.
func (e *Extractor) ExtractMultiPart(ctx context.Context, archivePaths []string, destination string, onProgress ProgressFunc) ([]string, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInProgress
	}
	defer e.busy.Store(false)

	if len(archivePaths) == 0 {
		return nil, fmt.Errorf("%w: no part archives given", ErrSourceNotFound)
	}
	ordered := orderParts(archivePaths)

	if desc, ok := partname.Parse(filepath.Base(ordered[0]), ordered[0]); ok && !desc.SinglePart() {
		if len(ordered) != desc.TotalParts {
			return nil, &PartCountError{Expected: desc.TotalParts, Found: len(ordered)}
		}
	}

	// Pre-scan every part so progress and the space preflight see the whole
	// merged category, not just the current part. This also surfaces missing
	// or corrupt parts before any bytes hit the destination.
	var combined archiveTotals
	for _, part := range ordered {
		if _, err := os.Stat(part); err != nil {
			return nil, sourceErr(part, err)
		}
		totals, err := e.scan(ctx, part)
		if err != nil {
			return nil, err
		}
		combined.files += totals.files
		combined.bytes += totals.bytes
	}

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return nil, err
	}
	if err := e.checkDiskSpace(destination, uint64(combined.bytes)); err != nil {
		_ = os.Remove(destination)
		return nil, err
	}

	logger := logging.WithContext(ctx, e.logger)
	logger.Info("starting multi-part extraction",
		logging.Int("parts", len(ordered)),
		logging.Int("total_files", combined.files),
		logging.Int64("total_bytes", combined.bytes))

	state := &runState{
		totalFiles: combined.files,
		totalBytes: combined.bytes,
		onProgress: onProgress,
	}
	var written []string
	for i, part := range ordered {
		if e.cancelled.Load() {
			// Stop before the next unprocessed part; completed parts stay.
			return nil, ErrCancelled
		}
		logger.Debug("extracting part",
			logging.Int("part", i+1),
			logging.String("archive", filepath.Base(part)))
		paths, err := e.extractInto(ctx, part, destination, state)
		if err != nil {
			return nil, err
		}
		written = append(written, paths...)
	}

	state.emitFinal()
	logger.Info("multi-part extraction completed",
		logging.Int("parts", len(ordered)),
		logging.Int("files", len(written)),
		logging.Int64("bytes", state.bytesDone))
	return written, nil
}

// orderParts returns archivePaths sorted ascending by the part index encoded
// in each filename. Paths that do not follow the part convention keep their
// relative order at index 1.
func orderParts(archivePaths []string) []string {
	type partRef struct {
		path  string
		index int
	}
	refs := make([]partRef, 0, len(archivePaths))
	for _, path := range archivePaths {
		index := 1
		if desc, ok := partname.Parse(filepath.Base(path), path); ok {
			index = desc.PartIndex
		}
		refs = append(refs, partRef{path: path, index: index})
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].index < refs[j].index })

	ordered := make([]string, len(refs))
	for i, ref := range refs {
		ordered[i] = ref.path
	}
	return ordered
}
