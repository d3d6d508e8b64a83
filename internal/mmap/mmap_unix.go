//go:build unix

package mmap

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) ([]byte, bool, error) {
	b, err := unix.Mmap(int(f.Fd()), 0, size, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, false, err
	}

	// records are walked front to back
	err = unix.Madvise(b, syscall.MADV_SEQUENTIAL)
	if err != nil && err != syscall.ENOSYS {
		_ = unix.Munmap(b)
		return nil, false, fmt.Errorf("madvise(MADV_SEQUENTIAL): %w", err)
	}
	return b, true, nil
}

func unmapFile(b []byte) error {
	return unix.Munmap(b)
}
