//go:build !hioload_debug

// File: internal/buildmode/debug_off.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package buildmode selects debug-only diagnostics at compile time.
package buildmode

// Debug is false in release builds.
const Debug = false
