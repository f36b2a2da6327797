// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package concurrency implements the engine behind api.Engine: a worker pool
// with optional CPU pinning that runs fire-and-forget callables away from the
// caller's stack.
package concurrency
