//go:build unix

package main

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isOutOfMemory reports whether err originated from the mmap syscall
// failing with ENOMEM, the only startup failure mode spec §6's exit code 3
// is meant to cover.
func isOutOfMemory(err error) bool {
	return errors.Is(err, unix.ENOMEM)
}
