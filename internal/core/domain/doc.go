// Package domain defines the core business entities for kvsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Product, Customer, Order, Invoice: cached store records
//   - SyncState: per (owner, resource type) checkpoint and guard
//   - SyncLogEntry: append-only audit trail of sync passes
//   - ProgressSnapshot: ephemeral progress reported to subscribers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
