package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrap_TagsMarker(t *testing.T) {
	underlying := errors.New("boom")
	err := Wrap(ErrValidation, "extractor", "open archive", "archive unreadable", underlying)
	if !errors.Is(err, ErrValidation) {
		t.Fatal("marker lost")
	}
	if !errors.Is(err, underlying) {
		t.Fatal("underlying error lost")
	}
	for _, fragment := range []string{"extractor", "open archive", "archive unreadable"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("message missing %q: %s", fragment, err)
		}
	}
}

func TestWrap_NilMarkerDefaultsTransient(t *testing.T) {
	err := Wrap(nil, "ledger", "insert run", "", fmt.Errorf("db locked"))
	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected transient default")
	}
}

func TestWrap_EmptyDetail(t *testing.T) {
	err := Wrap(ErrConfiguration, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %s", err)
	}
}

func TestContextCarriers(t *testing.T) {
	ctx := context.Background()
	if _, ok := RunIDFromContext(ctx); ok {
		t.Fatal("empty context should carry nothing")
	}

	ctx = WithRunID(ctx, "run-1")
	ctx = WithDataset(ctx, "INCLUDE")
	ctx = WithCategory(ctx, "Animals")

	if id, ok := RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("run id: %q %v", id, ok)
	}
	if ds, ok := DatasetFromContext(ctx); !ok || ds != "INCLUDE" {
		t.Fatalf("dataset: %q %v", ds, ok)
	}
	if cat, ok := CategoryFromContext(ctx); !ok || cat != "Animals" {
		t.Fatalf("category: %q %v", cat, ok)
	}
}

func TestWithRunID_EmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	if WithRunID(ctx, "") != ctx {
		t.Fatal("empty id should not allocate a new context")
	}
}
