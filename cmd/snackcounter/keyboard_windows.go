//go:build windows

package main

// makeRaw is a no-op on Windows; keys are read line-buffered
func makeRaw(fd int) (func(), error) {
	return func() {}, nil
}
