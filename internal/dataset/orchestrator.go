// Package dataset turns a flat set of downloaded archive files into an
// extracted, category-organized directory tree under the datasets root,
// reporting nested progress along the way.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"partwise/internal/config"
	"partwise/internal/extractor"
	"partwise/internal/fileutil"
	"partwise/internal/logging"
	"partwise/internal/partname"
	"partwise/internal/services"
)

// Status describes where a dataset extraction run currently stands.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExtracting Status = "extracting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Progress is a point-in-time snapshot of a dataset extraction run.
// OverallProgress is monotonically non-decreasing across one run and reaches
// exactly 1.0 when the run finishes without cancellation.
type Progress struct {
	DatasetName              string
	CurrentCategory          string
	CategoriesCompleted      int
	TotalCategories          int
	CurrentCategoryProgress  float64
	OverallProgress          float64
	Status                   Status
	CurrentFile              string
	FilesExtractedInCategory int
	TotalFilesInCategory     int
}

// ProgressFunc receives dataset progress snapshots. Callbacks run
// synchronously on the extraction goroutine.
type ProgressFunc func(Progress)

// CategoryOutcome records the result of extracting one category. It is
// created once per category and never mutated afterward.
type CategoryOutcome struct {
	Category       string
	PartsConsumed  int
	ExtractedFiles []string
	Destination    string
	Success        bool
	ErrorMessage   string
}

// Result is the terminal summary of one dataset extraction run. Success is
// the AND over all category outcomes.
type Result struct {
	DatasetName         string
	Categories          []CategoryOutcome
	TotalFilesExtracted int
	TotalBytesExtracted int64
	Duration            time.Duration
	Success             bool
	ErrorMessage        string
}

// Orchestrator drives one extraction per category of a dataset through the
// archive extractor, sequentially and in sorted category order. Each
// instance permits a single extraction in flight at a time.
type Orchestrator struct {
	logger    *slog.Logger
	cfg       *config.Config
	extractor *extractor.Extractor

	busy atomic.Bool
}

// New constructs an orchestrator around an extractor. logger may be nil.
func New(logger *slog.Logger, cfg *config.Config, ex *extractor.Extractor) *Orchestrator {
	return &Orchestrator{
		logger:    logging.NewComponentLogger(logger, "dataset"),
		cfg:       cfg,
		extractor: ex,
	}
}

// Cancel forwards to the underlying extractor. The run observes the flag at
// its next per-entry checkpoint and finishes with a cancelled status.
func (o *Orchestrator) Cancel() {
	o.extractor.Cancel()
}

// ExtractDataset groups files into categories and extracts each category
// under <datasetsRoot>/<datasetName>/<category>. One category's failure is
// recorded and does not stop its siblings; the result lists every outcome.
func (o *Orchestrator) ExtractDataset(ctx context.Context, datasetName string, files []string, onProgress ProgressFunc) (*Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, extractor.ErrAlreadyInProgress
	}
	defer o.busy.Store(false)

	groups := partname.GroupByCategory(files, o.cfg.Extraction.ArchiveExtension)
	return o.run(ctx, datasetName, groups, onProgress)
}

// ExtractDatasetWithMapping extracts a dataset whose files have been renamed
// on disk. Grouping runs against the original declared filenames (the map
// keys); the grouped descriptors are then pointed back at the real on-disk
// paths (the map values) before extraction.
func (o *Orchestrator) ExtractDatasetWithMapping(ctx context.Context, datasetName string, filenameToPath map[string]string, onProgress ProgressFunc) (*Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, extractor.ErrAlreadyInProgress
	}
	defer o.busy.Store(false)

	names := make([]string, 0, len(filenameToPath))
	for name := range filenameToPath {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := partname.GroupByCategory(names, o.cfg.Extraction.ArchiveExtension)
	for _, descriptors := range groups {
		for i := range descriptors {
			descriptors[i].SourcePath = filenameToPath[descriptors[i].SourcePath]
		}
	}
	return o.run(ctx, datasetName, groups, onProgress)
}

func (o *Orchestrator) run(ctx context.Context, datasetName string, groups map[string][]partname.Descriptor, onProgress ProgressFunc) (*Result, error) {
	start := time.Now()
	ctx = services.WithDataset(ctx, datasetName)
	logger := logging.WithContext(ctx, o.logger)

	root := filepath.Join(o.cfg.Paths.DatasetsRoot, datasetName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "dataset", "extract", fmt.Sprintf("create dataset root %s", root), err)
	}

	categories := partname.SortedCategories(groups)
	total := len(categories)
	result := &Result{DatasetName: datasetName, Success: true}

	logger.Info("starting dataset extraction",
		logging.Int("categories", total),
		logging.String("root", root))

	// Overall progress is latched so the emitted sequence never regresses,
	// including the terminal snapshot of a cancelled run.
	var highest float64
	emit := func(p Progress) {
		if onProgress == nil {
			return
		}
		if p.OverallProgress < highest {
			p.OverallProgress = highest
		} else {
			highest = p.OverallProgress
		}
		p.DatasetName = datasetName
		p.TotalCategories = total
		onProgress(p)
	}

	cancelled := false
	completed := 0
	for i, category := range categories {
		descriptors := groups[category]
		destination := filepath.Join(root, category)
		// Each category owns an equal 1/N share of the overall bar,
		// regardless of its byte size.
		base := float64(i) / float64(total)
		slice := 1.0 / float64(total)

		emit(Progress{
			CurrentCategory:     category,
			CategoriesCompleted: i,
			OverallProgress:     base,
			Status:              StatusExtracting,
		})

		catCtx := services.WithCategory(ctx, category)
		written, err := o.extractCategory(catCtx, descriptors, destination, func(p extractor.Progress) {
			fraction := p.Fraction()
			emit(Progress{
				CurrentCategory:          category,
				CategoriesCompleted:      i,
				CurrentCategoryProgress:  fraction,
				OverallProgress:          base + fraction*slice,
				Status:                   StatusExtracting,
				CurrentFile:              p.CurrentFile,
				FilesExtractedInCategory: p.FilesExtracted,
				TotalFilesInCategory:     p.TotalFiles,
			})
		})

		outcome := CategoryOutcome{
			Category:      category,
			PartsConsumed: len(descriptors),
			Destination:   destination,
		}
		if err != nil {
			outcome.ErrorMessage = err.Error()
			result.Success = false
			result.Categories = append(result.Categories, outcome)
			if errors.Is(err, extractor.ErrCancelled) {
				logging.WithContext(catCtx, o.logger).Info("category extraction cancelled")
				cancelled = true
				break
			}
			logging.WithContext(catCtx, o.logger).Warn("category extraction failed",
				logging.Error(err))
			completed++
			continue
		}

		outcome.Success = true
		outcome.ExtractedFiles = written
		result.Categories = append(result.Categories, outcome)
		result.TotalFilesExtracted += len(written)
		// Bytes are recomputed from disk rather than trusted from the
		// extractor's counters.
		result.TotalBytesExtracted += fileutil.SizeOnDisk(written)
		completed++

		emit(Progress{
			CurrentCategory:         category,
			CategoriesCompleted:     completed,
			CurrentCategoryProgress: 1,
			OverallProgress:         float64(completed) / float64(total),
			Status:                  StatusExtracting,
		})
	}

	result.Duration = time.Since(start)

	switch {
	case cancelled:
		result.ErrorMessage = "extraction cancelled"
		emit(Progress{
			CategoriesCompleted: completed,
			OverallProgress:     float64(completed) / float64(total),
			Status:              StatusCancelled,
		})
	case !result.Success:
		result.ErrorMessage = "some categories failed"
		emit(Progress{
			CategoriesCompleted: completed,
			OverallProgress:     1.0,
			Status:              StatusFailed,
		})
	default:
		emit(Progress{
			CategoriesCompleted: completed,
			OverallProgress:     1.0,
			Status:              StatusCompleted,
		})
	}

	logger.Info("dataset extraction finished",
		logging.Bool("success", result.Success),
		logging.Int("categories", len(result.Categories)),
		logging.Int("files", result.TotalFilesExtracted),
		logging.Int64("bytes", result.TotalBytesExtracted),
		logging.Duration("duration", result.Duration))
	return result, nil
}

// extractCategory delegates one category to the extractor. A lone
// single-part descriptor takes the plain extraction path; anything else,
// including a single orphaned multi-part member, goes through the multi-part
// path. Part-count validation runs here against the descriptors' declared
// totals, so it holds even when the on-disk paths have been renamed and no
// longer carry the part suffix.
func (o *Orchestrator) extractCategory(ctx context.Context, descriptors []partname.Descriptor, destination string, onProgress extractor.ProgressFunc) ([]string, error) {
	if len(descriptors) == 1 && descriptors[0].SinglePart() {
		return o.extractor.Extract(ctx, descriptors[0].SourcePath, destination, o.cfg.Extraction.OverwriteExisting, onProgress)
	}
	if expected := descriptors[0].TotalParts; len(descriptors) != expected {
		return nil, &extractor.PartCountError{Expected: expected, Found: len(descriptors)}
	}
	paths := make([]string, len(descriptors))
	for i, d := range descriptors {
		paths[i] = d.SourcePath
	}
	return o.extractor.ExtractMultiPart(ctx, paths, destination, onProgress)
}
