//go:build linux

// File: internal/concurrency/pin_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CPU pinning of engine workers via sched_setaffinity.

package concurrency

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCurrentThread locks the calling goroutine to its OS thread and binds the
// thread to cpuID (modulo the CPU count).
func PinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID % runtime.NumCPU())
	return unix.SchedSetaffinity(0, &set)
}

// UnpinCurrentThread restores the full CPU mask and releases the OS thread.
func UnpinCurrentThread() {
	var set unix.CPUSet
	set.Zero()
	for i := 0; i < runtime.NumCPU(); i++ {
		set.Set(i)
	}
	_ = unix.SchedSetaffinity(0, &set)
	runtime.UnlockOSThread()
}
