//go:build !unix

package source

import "os"

// Platforms without an mmap syscall (notably windows) fall back to a single
// full read; the checker only ever makes one pass over the file so the
// extra copy is not a meaningful cost.
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
