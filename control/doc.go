// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, metrics and debug introspection for the stream core:
//   - viper-backed ConfigStore with environment overrides and reload listeners
//   - prometheus collectors for teardown, failure fan-out, wrappers and engine tasks
//   - named debug probes
package control
