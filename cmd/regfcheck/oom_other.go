//go:build !unix

package main

func isOutOfMemory(err error) bool {
	return false
}
