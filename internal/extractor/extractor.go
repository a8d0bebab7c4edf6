package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/mholt/archives"

	"partwise/internal/logging"
	"partwise/internal/preflight"
)

// Progress is a point-in-time snapshot of one archive (or combined multi-part
// set) being extracted. FilesExtracted counts completed entries; CurrentFile
// names the entry about to be processed.
type Progress struct {
	CurrentFile    string
	FilesExtracted int
	TotalFiles     int
	BytesExtracted int64
	TotalBytes     int64
}

// Fraction returns completion in [0,1], preferring byte progress when the
// archive declares sizes.
func (p Progress) Fraction() float64 {
	if p.TotalBytes > 0 {
		f := float64(p.BytesExtracted) / float64(p.TotalBytes)
		if f > 1 {
			f = 1
		}
		return f
	}
	if p.TotalFiles > 0 {
		return float64(p.FilesExtracted) / float64(p.TotalFiles)
	}
	return 0
}

// ProgressFunc receives progress snapshots. Callbacks run synchronously on
// the extraction goroutine and must not block for long.
type ProgressFunc func(Progress)

// Option customizes an Extractor.
type Option func(*Extractor)

// WithDiskSpaceMargin overrides the free-space multiplier used by the
// preflight (default 1.1).
func WithDiskSpaceMargin(margin float64) Option {
	return func(e *Extractor) {
		if margin >= 1 {
			e.margin = margin
		}
	}
}

// WithStatfs overrides the free-space query (used in tests).
func WithStatfs(fn preflight.StatfsFunc) Option {
	return func(e *Extractor) {
		if fn != nil {
			e.statfs = fn
		}
	}
}

// Extractor unpacks archives. The zero value is not usable; construct with New.
type Extractor struct {
	logger *slog.Logger
	margin float64
	statfs preflight.StatfsFunc

	busy      atomic.Bool
	cancelled atomic.Bool
}

// New constructs an extractor. logger may be nil.
func New(logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		logger: logging.NewComponentLogger(logger, "extractor"),
		margin: 1.1,
		statfs: preflight.Statfs,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cancel requests a cooperative stop. The flag is observed at the start of
// each archive entry; the entry currently being written finishes first.
func (e *Extractor) Cancel() {
	e.cancelled.Store(true)
}

// ResetCancellation clears a previous Cancel so the instance can be reused.
func (e *Extractor) ResetCancellation() {
	e.cancelled.Store(false)
}

// Extract unpacks archivePath into destination and returns the written file
// paths in entry order. When destination already exists and overwriteExisting
// is false it fails with ErrDestinationExists before writing anything.
// Cancellation removes the partially written destination tree.
func (e *Extractor) Extract(ctx context.Context, archivePath, destination string, overwriteExisting bool, onProgress ProgressFunc) ([]string, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInProgress
	}
	defer e.busy.Store(false)

	if _, err := os.Stat(archivePath); err != nil {
		return nil, sourceErr(archivePath, err)
	}
	if _, err := os.Stat(destination); err == nil && !overwriteExisting {
		return nil, fmt.Errorf("%w: destination %s", ErrDestinationExists, destination)
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return nil, err
	}

	totals, err := e.scan(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	if err := e.checkDiskSpace(destination, uint64(totals.bytes)); err != nil {
		// Nothing written yet; drop the directory we just created.
		_ = os.Remove(destination)
		return nil, err
	}

	logger := logging.WithContext(ctx, e.logger)
	logger.Info("starting extraction",
		logging.String("archive", filepath.Base(archivePath)),
		logging.Int("total_files", totals.files),
		logging.Int64("total_bytes", totals.bytes))

	state := &runState{
		totalFiles: totals.files,
		totalBytes: totals.bytes,
		onProgress: onProgress,
	}
	written, err := e.extractInto(ctx, archivePath, destination, state)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			// Best-effort cleanup of the partial tree.
			_ = os.RemoveAll(destination)
		}
		return nil, err
	}

	state.emitFinal()
	logger.Info("extraction completed",
		logging.Int("files", len(written)),
		logging.Int64("bytes", state.bytesDone))
	return written, nil
}

// ListContents enumerates entry paths in archive order without extracting.
func (e *Extractor) ListContents(ctx context.Context, archivePath string) ([]string, error) {
	if _, err := os.Stat(archivePath); err != nil {
		return nil, sourceErr(archivePath, err)
	}
	var names []string
	err := e.walk(ctx, archivePath, func(_ context.Context, info archives.FileInfo) error {
		// Directory entries in zip archives carry a trailing slash.
		names = append(names, strings.TrimSuffix(info.NameInArchive, "/"))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// archiveTotals is the result of an enumeration pass over one archive.
type archiveTotals struct {
	files int
	bytes int64
}

// scan enumerates all entries up front so progress percentages and the
// disk-space preflight work from known totals.
func (e *Extractor) scan(ctx context.Context, archivePath string) (archiveTotals, error) {
	var totals archiveTotals
	err := e.walk(ctx, archivePath, func(_ context.Context, info archives.FileInfo) error {
		totals.files++
		if !info.IsDir() {
			totals.bytes += info.Size()
		}
		return nil
	})
	if err != nil {
		return archiveTotals{}, err
	}
	return totals, nil
}

// walk opens the archive and invokes handler once per entry in archive order.
func (e *Extractor) walk(ctx context.Context, archivePath string, handler archives.FileHandler) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return sourceErr(archivePath, err)
	}
	defer file.Close()

	format, input, err := archives.Identify(ctx, archivePath, file)
	if err != nil {
		return fmt.Errorf("%w: identify %s: %v", ErrInvalidArchive, filepath.Base(archivePath), err)
	}
	ex, ok := format.(archives.Extractor)
	if !ok {
		return fmt.Errorf("%w: format %T of %s does not support extraction", ErrInvalidArchive, format, filepath.Base(archivePath))
	}
	if err := ex.Extract(ctx, input, handler); err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			return ErrCancelled
		}
		var entryErr *EntryError
		if errors.As(err, &entryErr) {
			return err
		}
		return fmt.Errorf("%w: read %s: %v", ErrInvalidArchive, filepath.Base(archivePath), err)
	}
	return nil
}

// runState carries progress counters across the per-entry loop. For
// multi-part extraction the counters continue across parts so callbacks
// reflect position within the combined totals.
type runState struct {
	totalFiles int
	totalBytes int64
	filesDone  int
	bytesDone  int64
	onProgress ProgressFunc
}

func (s *runState) emit(currentFile string) {
	if s.onProgress == nil {
		return
	}
	s.onProgress(Progress{
		CurrentFile:    currentFile,
		FilesExtracted: s.filesDone,
		TotalFiles:     s.totalFiles,
		BytesExtracted: s.bytesDone,
		TotalBytes:     s.totalBytes,
	})
}

func (s *runState) emitFinal() {
	if s.onProgress == nil {
		return
	}
	s.onProgress(Progress{
		FilesExtracted: s.filesDone,
		TotalFiles:     s.totalFiles,
		BytesExtracted: s.bytesDone,
		TotalBytes:     s.totalBytes,
	})
}

// extractInto runs the per-entry loop for one archive. It never cleans up the
// destination itself; callers decide what cancellation rollback means.
func (e *Extractor) extractInto(ctx context.Context, archivePath, destination string, state *runState) ([]string, error) {
	var written []string
	err := e.walk(ctx, archivePath, func(ctx context.Context, info archives.FileInfo) error {
		if e.cancelled.Load() {
			return ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return ErrCancelled
		}

		// Emit before extracting so consumers can show the name about to be
		// processed.
		state.emit(info.NameInArchive)

		target, err := safeJoin(destination, info.NameInArchive)
		if err != nil {
			return &EntryError{Entry: info.NameInArchive, Err: err}
		}

		if info.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &EntryError{Entry: info.NameInArchive, Err: err}
			}
			state.filesDone++
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return &EntryError{Entry: info.NameInArchive, Err: err}
		}
		n, err := writeEntry(info, target)
		if err != nil {
			return &EntryError{Entry: info.NameInArchive, Err: err}
		}
		state.filesDone++
		state.bytesDone += n
		written = append(written, target)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

// writeEntry streams one archive entry to target. The underlying reader
// verifies checksums as it decompresses; errors surface here.
func writeEntry(info archives.FileInfo, target string) (int64, error) {
	reader, err := info.Open()
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	mode := info.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, reader)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// checkDiskSpace requires free space of at least totalBytes times the margin.
// A failing space query is not fatal; extraction proceeds best-effort.
func (e *Extractor) checkDiskSpace(destination string, totalBytes uint64) error {
	_, free, err := e.statfs(destination)
	if err != nil {
		e.logger.Warn("disk space query failed, proceeding without preflight", logging.Error(err))
		return nil
	}
	required := uint64(float64(totalBytes) * e.margin)
	if free < required {
		return &DiskSpaceError{Required: required, Available: free}
	}
	return nil
}

// safeJoin resolves an archive entry path beneath root, rejecting traversal
// outside it.
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	cleanRoot := filepath.Clean(root)
	if target != cleanRoot && !strings.HasPrefix(target, cleanRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry path %q escapes destination", ErrInvalidArchive, name)
	}
	return target, nil
}

func sourceErr(archivePath string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, archivePath)
	}
	return err
}
