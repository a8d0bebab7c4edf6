package main

import (
	"testing"
	"unicode/utf8"
)

func TestParseMappingFlags(t *testing.T) {
	mapping, err := parseMappingFlags([]string{
		"Animals_1of2.zip=/blobs/3f2a",
		"Seasons.zip=/blobs/9bc1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(mapping) != 2 || mapping["Animals_1of2.zip"] != "/blobs/3f2a" {
		t.Fatalf("mapping: %#v", mapping)
	}

	if m, err := parseMappingFlags(nil); err != nil || m != nil {
		t.Fatalf("empty input: %#v, %v", m, err)
	}

	for _, bad := range []string{"no-separator", "=path-only", "name-only=", " = "} {
		if _, err := parseMappingFlags([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}

	if _, err := parseMappingFlags([]string{"a.zip=/x", "a.zip=/y"}); err == nil {
		t.Fatal("expected error for duplicate entries")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a longer message here", 10); got != "a longe..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abc", 3); got != "abc" {
		t.Fatalf("got %q", got)
	}
	// Cuts land on rune boundaries, never mid-codepoint.
	if got := truncate("sæson_optagelser_øst.zip", 10); got != "sæson_o..." {
		t.Fatalf("got %q", got)
	}
	if !utf8.ValidString(truncate("日本語のアーカイブ名です", 8)) {
		t.Fatal("truncated string is not valid UTF-8")
	}
}
