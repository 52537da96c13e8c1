// Package platform wraps the positional I/O and allocation hints used to
// read input blocks and write signature files.
package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// PreadFull reads len(buf) bytes from f at off with pread(2), retrying short
// reads. It returns fewer bytes only when the end of file is reached, in which
// case the error is nil.
//
//nolint:gosec // G115: fd values are small non-negative integers
func PreadFull(f *os.File, buf []byte, off int64) (int, error) {
	fd := int(f.Fd())
	total := 0
	for total < len(buf) {
		n, err := unix.Pread(fd, buf[total:], off+int64(total))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return total, &os.PathError{Op: "pread", Path: f.Name(), Err: err}
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}

// FileSize returns the size of the file at path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, &os.PathError{Op: "stat", Path: path, Err: errors.New("not a regular file")}
	}
	return info.Size(), nil
}
