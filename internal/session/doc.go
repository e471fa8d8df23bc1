// Package session holds per-conversation trip-planning state in memory.
//
// A session is the (app, user, session) keyed unit of conversational
// continuity; its payload is a [state.State] plus a loose attribute map for
// values the schema does not model. The [Store] owns the records; the
// [Manager] is the façade the transport layer uses, bound to one application
// name.
//
// Key operations:
//
//   - Record lifecycle: [Store.Create] (idempotent), [Store.Get]
//   - Merge updates: [Store.ApplyUpdates]
//   - Transport façade: [Manager.GetOrCreate], [Manager.Get]
//
// # Concurrency
//
// Store is safe for concurrent use. The record map is guarded by a store
// RWMutex; each record carries its own mutex so merges on the same session
// serialize (no lost field, no torn value) while sessions never block each
// other. Reads return deep snapshots, so a caller that re-reads after a
// completed turn observes every update that turn applied.
//
// # Lifetime
//
// Records live for the life of the process. There is no persistence and no
// eviction; the store is constructed at service startup and dropped at
// shutdown.
package session
