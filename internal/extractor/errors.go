package extractor

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

var (
	ErrSourceNotFound        = errors.New("source archive not found")
	ErrInvalidArchive        = errors.New("invalid archive")
	ErrDestinationExists     = errors.New("destination already exists")
	ErrAlreadyInProgress     = errors.New("extraction already in progress")
	ErrCancelled             = errors.New("extraction cancelled")
	ErrInsufficientDiskSpace = errors.New("insufficient disk space")
	ErrPartCountMismatch     = errors.New("part count mismatch")
)

// DiskSpaceError reports a failed free-space preflight. Required already
// includes the safety margin.
type DiskSpaceError struct {
	Required  uint64
	Available uint64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space: need %s, have %s",
		humanize.IBytes(e.Required), humanize.IBytes(e.Available))
}

func (e *DiskSpaceError) Unwrap() error { return ErrInsufficientDiskSpace }

// PartCountError reports a multi-part set whose physical file count does not
// match the total declared in the part filenames.
type PartCountError struct {
	Expected int
	Found    int
}

func (e *PartCountError) Error() string {
	return fmt.Sprintf("part count mismatch: filenames declare %d parts, found %d", e.Expected, e.Found)
}

func (e *PartCountError) Unwrap() error { return ErrPartCountMismatch }

// EntryError reports a failure while extracting a single archive entry. The
// failure aborts the archive's extraction; there are no per-entry retries.
type EntryError struct {
	Entry string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("extract entry %s: %v", e.Entry, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
