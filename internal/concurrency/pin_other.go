//go:build !linux

// File: internal/concurrency/pin_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"runtime"

	"github.com/momentics/hioload-transport/api"
)

// PinCurrentThread only locks the goroutine to its OS thread on platforms
// without sched_setaffinity.
func PinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	return api.ErrNotSupported
}

// UnpinCurrentThread releases the OS thread.
func UnpinCurrentThread() {
	runtime.UnlockOSThread()
}
