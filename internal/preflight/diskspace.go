package preflight

import "syscall"

// StatfsFunc reports (total, free) bytes for the volume containing path.
// Swappable in tests.
type StatfsFunc func(path string) (uint64, uint64, error)

// Statfs is the real implementation backed by syscall.Statfs.
func Statfs(path string) (uint64, uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
