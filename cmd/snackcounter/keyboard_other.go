//go:build !linux && !darwin && !windows

package main

import "errors"

func makeRaw(fd int) (func(), error) {
	return nil, errors.New("keyboard shortcuts are not supported on this platform")
}
