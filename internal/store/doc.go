// Package store implements the in-memory entity store and the lock that makes it safe to share.
//
// # Layers
//
// [Memory] owns the identifier → entity map and the CRUD rules. It has no locking of its own and must only be used
// from one goroutine at a time.
//
// [Guard] wraps exactly one [Memory] behind a single [sync.Mutex]. Every call, reads included, holds the lock for the
// duration of one store operation and releases it on every exit path. Operations are therefore linearized: a List
// never observes a half-applied Add or Delete.
//
// Both types are generic over the entity type T and its pointer P (see [models.Record]); values go in and come out
// by copy, so nothing outside the guard aliases the map.
//
// # Update semantics
//
// Update is an unconditional upsert. Replacing an absent identifier creates the entry rather than failing with
// [shared.ErrNotFound]. The stored copy always carries the identifier it is addressed by.
//
// # Seeding
//
// [LoadSeed] decodes a TOML, YAML or JSON file of entities; [Guard.Seed] adds them through the normal Add path so
// each gets a fresh identifier.
//
// A single coarse lock keeps exclusion trivially correct. Per-key sharding or a reader/writer split would raise read
// throughput without changing this package's contract.
package store
