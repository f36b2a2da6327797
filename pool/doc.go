// Package pool
// Author: momentics <momentics@gmail.com>
//
// Pooled storage for self-owned operation wrappers. Slots are handed out with
// a generation number so that a completion firing twice cannot release the
// same storage twice.
package pool
