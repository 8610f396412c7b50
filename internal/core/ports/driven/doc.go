// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ResourceFetcher: Pulls pages of records from the upstream POS API
//   - FetcherFactory: Creates owner-scoped fetchers from stored credentials
//   - CacheStore: Normalised record persistence (the local read replica)
//   - SyncStateStore: Per (owner, resource type) checkpoint persistence
//   - SyncLogStore: Append-only sync audit trail
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
