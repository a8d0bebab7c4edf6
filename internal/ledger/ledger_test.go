package ledger_test

import (
	"context"
	"testing"
	"time"

	"partwise/internal/dataset"
	"partwise/internal/ledger"
	"partwise/internal/testsupport"
	"partwise/internal/testsupport/ledgertest"
)

func sampleResult() *dataset.Result {
	return &dataset.Result{
		DatasetName: "INCLUDE",
		Categories: []dataset.CategoryOutcome{
			{
				Category:       "Animals",
				PartsConsumed:  2,
				ExtractedFiles: []string{"/data/INCLUDE/Animals/cat.mp4", "/data/INCLUDE/Animals/fox.mp4"},
				Destination:    "/data/INCLUDE/Animals",
				Success:        true,
			},
			{
				Category:      "Seasons",
				PartsConsumed: 1,
				Destination:   "/data/INCLUDE/Seasons",
				Success:       false,
				ErrorMessage:  "invalid archive",
			},
		},
		TotalFilesExtracted: 2,
		TotalBytesExtracted: 8,
		Duration:            90 * time.Second,
		Success:             false,
		ErrorMessage:        "some categories failed",
	}
}

func TestRecordAndListRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := ledgertest.MustOpenLedger(t, cfg)
	ctx := context.Background()

	runID, err := store.RecordRun(ctx, sampleResult())
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run id")
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	run := runs[0]
	if run.ID != runID || run.Dataset != "INCLUDE" {
		t.Fatalf("unexpected run: %#v", run)
	}
	if run.Success {
		t.Fatal("run should record failure")
	}
	if run.ErrorMessage != "some categories failed" {
		t.Fatalf("error message: %q", run.ErrorMessage)
	}
	if run.TotalFiles != 2 || run.TotalBytes != 8 || run.Categories != 2 {
		t.Fatalf("counts: %#v", run)
	}
	if run.Duration != 90*time.Second {
		t.Fatalf("duration: %v", run.Duration)
	}
	if run.FinishedAt.Before(run.StartedAt) {
		t.Fatalf("timestamps inverted: %#v", run)
	}
}

func TestCategoriesForRunPreserveOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := ledgertest.MustOpenLedger(t, cfg)
	ctx := context.Background()

	runID, err := store.RecordRun(ctx, sampleResult())
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	categories, err := store.CategoriesForRun(ctx, runID)
	if err != nil {
		t.Fatalf("CategoriesForRun failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Category != "Animals" || categories[1].Category != "Seasons" {
		t.Fatalf("order not preserved: %#v", categories)
	}
	if categories[0].FilesExtracted != 2 || !categories[0].Success {
		t.Fatalf("animals record: %#v", categories[0])
	}
	if categories[1].Success || categories[1].ErrorMessage != "invalid archive" {
		t.Fatalf("seasons record: %#v", categories[1])
	}
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := ledgertest.MustOpenLedger(t, cfg)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		result := sampleResult()
		result.DatasetName = name
		if _, err := store.RecordRun(ctx, result); err != nil {
			t.Fatalf("RecordRun %s failed: %v", name, err)
		}
		// Distinct started_at values so ordering is deterministic.
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Dataset != "third" || runs[1].Dataset != "second" {
		t.Fatalf("ordering: %#v", runs)
	}
}

func TestGetRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := ledgertest.MustOpenLedger(t, cfg)
	ctx := context.Background()

	runID, err := store.RecordRun(ctx, sampleResult())
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.ID != runID {
		t.Fatalf("unexpected run: %#v", run)
	}

	if _, err := store.GetRun(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close ledger: %v", err)
	}

	// Reopening against the same file succeeds while the version matches.
	store, err = ledger.Open(cfg)
	if err != nil {
		t.Fatalf("reopen ledger: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close ledger: %v", err)
	}
}
