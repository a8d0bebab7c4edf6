package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"partwise/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded extraction runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ledger.Open(ctx.configValue())
			if err != nil {
				return fmt.Errorf("open history ledger: %w", err)
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				return printRunDetail(cmd, store, args[0])
			}
			return printRunList(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func printRunList(cmd *cobra.Command, store *ledger.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No extraction runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := "ok"
		if !run.Success {
			status = "failed"
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.Dataset,
			run.FinishedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", run.Categories),
			fmt.Sprintf("%d", run.TotalFiles),
			humanize.IBytes(uint64(run.TotalBytes)),
			run.Duration.Round(time.Second).String(),
			status,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Dataset", "Finished", "Categories", "Files", "Bytes", "Duration", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func printRunDetail(cmd *cobra.Command, store *ledger.Store, runID string) error {
	run, err := store.FindRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	categories, err := store.CategoriesForRun(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "Dataset:  %s\n", run.Dataset)
	fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(out, "Duration: %s\n", run.Duration.Round(time.Second))
	fmt.Fprintf(out, "Success:  %s\n", yesNo(run.Success))
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:    %s\n", run.ErrorMessage)
	}

	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		status := "ok"
		if !c.Success {
			status = "failed"
		}
		rows = append(rows, []string{
			c.Category,
			fmt.Sprintf("%d", c.PartsConsumed),
			fmt.Sprintf("%d", c.FilesExtracted),
			status,
			truncate(c.ErrorMessage, 60),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Category", "Parts", "Files", "Status", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
