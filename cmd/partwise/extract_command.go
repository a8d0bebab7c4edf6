package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"partwise/internal/config"
	"partwise/internal/dataset"
	"partwise/internal/extractor"
	"partwise/internal/ledger"
	"partwise/internal/logging"
	"partwise/internal/progress"
	"partwise/internal/services"
)

const progressBarScale = 1000

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var mapFlags []string
	var overwrite bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "extract <dataset> [archive...]",
		Short: "Extract a dataset's archives into the datasets root",
		Long: `Extract groups the given archives into categories, reassembles
multi-part sets, and unpacks each category under
<datasets_root>/<dataset>/<category>. Use repeated --map flags instead of
positional archives when files have been renamed on disk.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			datasetName := args[0]
			files := args[1:]

			mapping, err := parseMappingFlags(mapFlags)
			if err != nil {
				return err
			}
			if len(files) == 0 && len(mapping) == 0 {
				return errors.New("provide archive paths or --map entries")
			}
			if len(files) > 0 && len(mapping) > 0 {
				return errors.New("positional archives and --map are mutually exclusive")
			}
			if overwrite {
				cfg.Extraction.OverwriteExisting = true
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			// One extraction per datasets root across processes; the
			// in-process busy flag only covers this orchestrator.
			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "partwise.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire extraction lock: %w", err)
			}
			if !locked {
				return extractor.ErrAlreadyInProgress
			}
			defer func() { _ = lock.Unlock() }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			runCtx = services.WithRunID(runCtx, uuid.NewString())

			ex := extractor.New(logger, extractor.WithDiskSpaceMargin(cfg.Extraction.DiskSpaceMargin))
			orchestrator := dataset.New(logger, cfg, ex)
			projector := progress.NewProjector()

			out := cmd.OutOrStdout()
			var bar *progressbar.ProgressBar
			if isTerminalWriter(out) {
				bar = progressbar.NewOptions(progressBarScale,
					progressbar.OptionSetWriter(out),
					progressbar.OptionSetDescription("extracting"),
					progressbar.OptionSetPredictTime(true),
					progressbar.OptionShowCount(),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer: "█", SaucerHead: "█", SaucerPadding: "░",
						BarStart: "[", BarEnd: "]",
					}),
				)
			}
			onProgress := func(p dataset.Progress) {
				projector.Observe(p)
				if bar == nil {
					return
				}
				snap := projector.Snapshot()
				bar.Describe(truncate(snap.Label(), 48))
				_ = bar.Set(int(snap.Percent / 100 * progressBarScale))
			}

			var result *dataset.Result
			if len(mapping) > 0 {
				result, err = orchestrator.ExtractDatasetWithMapping(runCtx, datasetName, mapping, onProgress)
			} else {
				result, err = orchestrator.ExtractDataset(runCtx, datasetName, files, onProgress)
			}
			if err != nil {
				return err
			}
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(out)
			}

			if !noHistory {
				recordRun(cfg, logger, result)
			}
			printResult(out, result)

			if !result.Success {
				return errors.New(result.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&mapFlags, "map", nil, "Map an original filename to its on-disk path (original-name=path), repeatable")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow extraction into existing category directories")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording the run in the history ledger")
	return cmd
}

func recordRun(cfg *config.Config, logger *slog.Logger, result *dataset.Result) {
	store, err := ledger.Open(cfg)
	if err != nil {
		logger.Warn("history ledger unavailable", logging.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.RecordRun(context.Background(), result); err != nil {
		logger.Warn("record extraction run", logging.Error(err))
	}
}

func printResult(out io.Writer, result *dataset.Result) {
	rows := make([][]string, 0, len(result.Categories))
	for _, c := range result.Categories {
		status := "ok"
		if !c.Success {
			status = "failed"
		}
		detail := c.ErrorMessage
		rows = append(rows, []string{
			c.Category,
			fmt.Sprintf("%d", c.PartsConsumed),
			fmt.Sprintf("%d", len(c.ExtractedFiles)),
			status,
			truncate(detail, 60),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Category", "Parts", "Files", "Status", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "%s: %d files, %s in %s\n",
		result.DatasetName,
		result.TotalFilesExtracted,
		humanize.IBytes(uint64(result.TotalBytesExtracted)),
		result.Duration.Round(10*time.Millisecond))
}
