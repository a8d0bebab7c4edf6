package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
)

// SizeOnDisk sums the sizes of the given files by statting each one. Paths
// that cannot be statted contribute zero; the total is best-effort.
func SizeOnDisk(paths []string) int64 {
	var total int64
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		total += info.Size()
	}
	return total
}

// DirectorySize walks root and sums the sizes of all regular files beneath
// it. A missing root returns zero.
func DirectorySize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, infoErr := d.Info(); infoErr == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// IsEmptyDir reports whether path is a directory with no entries.
func IsEmptyDir(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
