// Package partname interprets the filename convention that marks an archive
// as one part of a multi-part category.
//
// The convention is `<Category>_<i>of<n>.<ext>`: "Animals_2of3.zip" is part 2
// of 3 for the "Animals" category. Archives without the suffix are single-part
// categories named after the file's base name. Grouping is purely
// filename-driven; directory layout never influences it.
//
// Everything here is a pure function over strings. All comparisons are
// ordinal and case-sensitive -- no locale normalization.
package partname
