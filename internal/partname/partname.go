package partname

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Descriptor identifies one physical file as a member of a logical category.
// Descriptors are immutable values built from filenames; they are never
// persisted.
type Descriptor struct {
	Category   string
	PartIndex  int
	TotalParts int
	SourcePath string
}

// SinglePart reports whether the descriptor stands alone for its category.
func (d Descriptor) SinglePart() bool {
	return d.TotalParts == 1
}

// IsMultiPart reports whether filename carries a well-formed `_<i>of<n>`
// suffix with positive integers on both sides.
func IsMultiPart(filename string) bool {
	_, ok := Parse(filename, "")
	return ok
}

// Parse extracts a Descriptor from filename, recording sourcePath as the
// physical location. It returns false when the filename does not follow the
// multi-part convention. Malformed numeric groups (e.g. "Animals_xof3.zip")
// are treated as "not multi-part", never as an error.
func Parse(filename, sourcePath string) (Descriptor, bool) {
	base := path.Base(filename)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	idx := strings.LastIndex(stem, "_")
	if idx <= 0 || idx == len(stem)-1 {
		return Descriptor{}, false
	}
	category := stem[:idx]
	suffix := stem[idx+1:]

	partIndex, totalParts, ok := parseSuffix(suffix)
	if !ok {
		return Descriptor{}, false
	}
	return Descriptor{
		Category:   category,
		PartIndex:  partIndex,
		TotalParts: totalParts,
		SourcePath: sourcePath,
	}, true
}

// parseSuffix splits "<i>of<n>" and validates both halves as positive
// integers with i <= n.
func parseSuffix(suffix string) (int, int, bool) {
	sep := strings.Index(suffix, "of")
	if sep <= 0 || sep == len(suffix)-2 {
		return 0, 0, false
	}
	left := suffix[:sep]
	right := suffix[sep+2:]

	partIndex, err := strconv.Atoi(left)
	if err != nil || partIndex < 1 {
		return 0, 0, false
	}
	totalParts, err := strconv.Atoi(right)
	if err != nil || totalParts < 1 {
		return 0, 0, false
	}
	if partIndex > totalParts {
		return 0, 0, false
	}
	return partIndex, totalParts, true
}

// Filename is the inverse of Parse. A single-part category omits the
// `_<i>of<n>` suffix entirely.
func Filename(category string, partIndex, totalParts int, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if totalParts == 1 {
		return category + ext
	}
	return fmt.Sprintf("%s_%dof%d%s", category, partIndex, totalParts, ext)
}

// GroupByCategory classifies every input file into exactly one category.
// Files matching the multi-part convention join their declared category;
// any other file with the given archive extension becomes a synthetic
// single-part descriptor named after the file minus extension. Files with a
// different extension are ignored. Each group is sorted ascending by part
// index.
func GroupByCategory(files []string, archiveExt string) map[string][]Descriptor {
	if archiveExt != "" && !strings.HasPrefix(archiveExt, ".") {
		archiveExt = "." + archiveExt
	}
	groups := make(map[string][]Descriptor)
	for _, file := range files {
		base := path.Base(file)
		if desc, ok := Parse(base, file); ok {
			groups[desc.Category] = append(groups[desc.Category], desc)
			continue
		}
		if archiveExt != "" && !strings.HasSuffix(base, archiveExt) {
			continue
		}
		category := strings.TrimSuffix(base, path.Ext(base))
		groups[category] = append(groups[category], Descriptor{
			Category:   category,
			PartIndex:  1,
			TotalParts: 1,
			SourcePath: file,
		})
	}
	for _, descriptors := range groups {
		SortByPartIndex(descriptors)
	}
	return groups
}

// SortByPartIndex orders descriptors ascending by part index in place.
func SortByPartIndex(descriptors []Descriptor) {
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].PartIndex < descriptors[j].PartIndex
	})
}

// SortedCategories returns the group keys in ascending ordinal order. The
// orchestrator depends on this for a reproducible progress sequence.
func SortedCategories(groups map[string][]Descriptor) []string {
	categories := make([]string, 0, len(groups))
	for category := range groups {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// ValidateCompleteness reports whether descriptors form a full part set:
// non-empty, a single agreed total, exactly that many entries, and part
// indices covering {1..total} with no duplicates or gaps.
func ValidateCompleteness(descriptors []Descriptor) bool {
	if len(descriptors) == 0 {
		return false
	}
	total := descriptors[0].TotalParts
	seen := make(map[int]struct{}, len(descriptors))
	for _, d := range descriptors {
		if d.TotalParts != total {
			return false
		}
		if d.PartIndex < 1 || d.PartIndex > total {
			return false
		}
		if _, dup := seen[d.PartIndex]; dup {
			return false
		}
		seen[d.PartIndex] = struct{}{}
	}
	return len(seen) == total
}

// MissingIndices lists the part indices absent from descriptors, ascending.
// The declared total is taken from the first descriptor.
func MissingIndices(descriptors []Descriptor) []int {
	if len(descriptors) == 0 {
		return nil
	}
	total := descriptors[0].TotalParts
	seen := make(map[int]struct{}, len(descriptors))
	for _, d := range descriptors {
		seen[d.PartIndex] = struct{}{}
	}
	var missing []int
	for i := 1; i <= total; i++ {
		if _, ok := seen[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}
