// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Bulk Import
//
// [Importer.Import] pushes a batch of entities to a catalog through a pool of workers:
//   - Each create waits on a shared [rate.Limiter] so a running server is not flooded
//   - Failures are recorded per entity and never abort the batch
//   - Results come back in input order
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends use select with default, so a
// slow or absent reader never blocks the import.
package tasks
