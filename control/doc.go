// Package control holds the process-level execution configuration
// (ExecConfig) plus the hot-reload, metrics, and debug introspection layer
// the scheduler reports through.
//
// Provides concurrent-safe state handling primitives including:
//   - Immutable snapshot config reads and atomic updates
//   - Runtime observers for hot-reload
//   - Metrics telemetry contracts
//   - State export, debug hooks, and probe registration
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
