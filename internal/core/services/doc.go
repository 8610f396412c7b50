// Package services implements the core business logic for kvsync.
//
// Services orchestrate between driving ports (what the CLI calls) and
// driven ports (what infrastructure implements). The main services are:
//
//   - SyncOrchestrator: sequences the four resource types through
//     fetch, reconcile and checkpoint
//   - Reconciler: merges fetched records into the local cache
//   - ProgressReporter: fans progress snapshots out to subscribers
package services
