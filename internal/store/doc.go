// Package store provides durable key→JSON-document storage for style-mirror.
//
// The store is a namespaced key-value contract with whole-document writes:
//   - Get returns the stored document, or found=false when the key is absent
//   - Set replaces the document in full (last-write-wins per key)
//   - There is no multi-key transaction and no optimistic concurrency token
//
// Backends:
//   - SQLite: single-file durable store (WAL mode, embedded schema)
//   - Redis: shared store for deployments that already run Redis
//   - Memory: process-local store for tests and previews
//
// Callers bind a backend to a namespace with Namespace and use the resulting
// KV. KV guarantees every failure is a *Error carrying ErrCodeRead or
// ErrCodeWrite, so the display layer can tell "could not load" apart from
// "could not save" without inspecting backend-specific errors.
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
