package partname

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	desc, ok := Parse("Animals_2of3.zip", "/tmp/Animals_2of3.zip")
	if !ok {
		t.Fatal("expected match")
	}
	if desc.Category != "Animals" || desc.PartIndex != 2 || desc.TotalParts != 3 {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
	if desc.SourcePath != "/tmp/Animals_2of3.zip" {
		t.Fatalf("source path not carried: %q", desc.SourcePath)
	}
}

func TestParse_CategoryWithUnderscores(t *testing.T) {
	desc, ok := Parse("Daily_Routine_1of2.zip", "")
	if !ok {
		t.Fatal("expected match")
	}
	if desc.Category != "Daily_Routine" {
		t.Fatalf("split on wrong underscore: %q", desc.Category)
	}
}

func TestParse_Rejections(t *testing.T) {
	cases := []string{
		"Seasons.zip",        // no suffix
		"Animals_xof3.zip",   // non-numeric index
		"Animals_1ofx.zip",   // non-numeric total
		"Animals_0of3.zip",   // index below 1
		"Animals_4of3.zip",   // index above total
		"Animals_1of0.zip",   // total below 1
		"Animals_of3.zip",    // empty index
		"Animals_3of.zip",    // empty total
		"_1of2.zip",          // empty category
		"Animals-1of2.zip",   // wrong separator
		"Animals_-1of2.zip",  // negative index
		"Animals_1.5of2.zip", // non-integer
	}
	for _, name := range cases {
		if _, ok := Parse(name, ""); ok {
			t.Errorf("Parse(%q) matched, want rejection", name)
		}
	}
}

func TestFilename_RoundTrip(t *testing.T) {
	names := []string{
		"Animals_1of2.zip",
		"Animals_2of2.zip",
		"Greetings_3of10.zip",
		"Daily_Routine_1of4.zip",
	}
	for _, name := range names {
		desc, ok := Parse(name, "")
		if !ok {
			t.Fatalf("Parse(%q) failed", name)
		}
		got := Filename(desc.Category, desc.PartIndex, desc.TotalParts, ".zip")
		if got != name {
			t.Errorf("round trip: got %q, want %q", got, name)
		}
	}
}

func TestFilename_SinglePartOmitsSuffix(t *testing.T) {
	if got := Filename("Seasons", 1, 1, "zip"); got != "Seasons.zip" {
		t.Fatalf("got %q", got)
	}
}

func TestGroupByCategory(t *testing.T) {
	files := []string{
		"Animals_2of2.zip",
		"Seasons.zip",
		"Animals_1of2.zip",
	}
	groups := GroupByCategory(files, ".zip")
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(groups), groups)
	}

	animals := groups["Animals"]
	if len(animals) != 2 {
		t.Fatalf("expected 2 Animals parts, got %d", len(animals))
	}
	if animals[0].PartIndex != 1 || animals[1].PartIndex != 2 {
		t.Fatalf("parts not sorted by index: %+v", animals)
	}

	seasons := groups["Seasons"]
	if len(seasons) != 1 {
		t.Fatalf("expected 1 Seasons part, got %d", len(seasons))
	}
	if !seasons[0].SinglePart() || seasons[0].PartIndex != 1 {
		t.Fatalf("synthetic single-part descriptor malformed: %+v", seasons[0])
	}
}

func TestGroupByCategory_Partition(t *testing.T) {
	files := []string{
		"A_1of2.zip", "A_2of2.zip", "B.zip", "C_1of1.zip", "Broken_xof3.zip",
	}
	groups := GroupByCategory(files, ".zip")

	seen := make(map[string]int)
	for _, descriptors := range groups {
		for _, d := range descriptors {
			seen[d.SourcePath]++
		}
	}
	if len(seen) != len(files) {
		t.Fatalf("expected %d classified files, got %d", len(files), len(seen))
	}
	for file, count := range seen {
		if count != 1 {
			t.Errorf("file %q appears %d times", file, count)
		}
	}
}

func TestGroupByCategory_MalformedSuffixKeepsWholeName(t *testing.T) {
	groups := GroupByCategory([]string{"Animals_xof3.zip"}, ".zip")
	if _, ok := groups["Animals_xof3"]; !ok {
		t.Fatalf("malformed suffix should fold into single-part category, got %v", groups)
	}
}

func TestGroupByCategory_SkipsForeignExtensions(t *testing.T) {
	groups := GroupByCategory([]string{"notes.txt", "Seasons.zip"}, ".zip")
	if len(groups) != 1 {
		t.Fatalf("expected only Seasons, got %v", groups)
	}
}

func TestValidateCompleteness(t *testing.T) {
	mk := func(indices []int, total int) []Descriptor {
		out := make([]Descriptor, 0, len(indices))
		for _, i := range indices {
			out = append(out, Descriptor{Category: "X", PartIndex: i, TotalParts: total})
		}
		return out
	}

	cases := []struct {
		name    string
		descs   []Descriptor
		want    bool
		missing []int
	}{
		{"empty", nil, false, nil},
		{"single", mk([]int{1}, 1), true, nil},
		{"complete", mk([]int{2, 1, 3}, 3), true, nil},
		{"gap", mk([]int{1, 3}, 3), false, []int{2}},
		{"duplicate", mk([]int{1, 1}, 2), false, []int{2}},
		{"disagreeing totals", []Descriptor{
			{PartIndex: 1, TotalParts: 2},
			{PartIndex: 2, TotalParts: 3},
		}, false, nil},
		{"all missing but one", mk([]int{1}, 4), false, []int{2, 3, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateCompleteness(tc.descs); got != tc.want {
				t.Fatalf("ValidateCompleteness = %v, want %v", got, tc.want)
			}
			if tc.want {
				if missing := MissingIndices(tc.descs); len(missing) != 0 {
					t.Fatalf("complete set reported missing indices: %v", missing)
				}
			}
		})
	}
}

func TestMissingIndices_Ascending(t *testing.T) {
	descs := []Descriptor{
		{PartIndex: 5, TotalParts: 6},
		{PartIndex: 2, TotalParts: 6},
	}
	want := []int{1, 3, 4, 6}
	if got := MissingIndices(descs); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSortedCategories(t *testing.T) {
	groups := map[string][]Descriptor{
		"Seasons": nil,
		"Animals": nil,
		"Colors":  nil,
	}
	want := []string{"Animals", "Colors", "Seasons"}
	if got := SortedCategories(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
