// Package activity records which catalog requests each client made.
//
// A [Recorder] keeps a short, newest-first history per client identifier. Three backends exist:
//
//   - [Memory] holds entries in process and loses them on restart.
//   - [SQLite] writes to the activity table created by the shared migrations.
//   - [Redis] keeps one capped list per client, pushed with LPUSH and trimmed with LTRIM.
//
// [New] picks a backend from [shared.ActivityConfig]. The "none" backend returns a nil [Recorder],
// which the server treats as recording disabled.
//
// Every backend keeps at most MaxEntries entries per client; older entries are dropped on write.
package activity
