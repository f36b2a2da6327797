// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package api holds the contracts shared by the stream lifecycle core and the
// transports plugged under it: the scheduling engine, pollers, debug probes and
// the Status error value.
package api
