//go:build hioload_debug

// File: internal/buildmode/debug_on.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buildmode

// Debug is true when built with -tags hioload_debug. Debug builds keep
// diagnostic tags on stream refcounts.
const Debug = true
