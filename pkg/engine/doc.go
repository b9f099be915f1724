// Package engine executes generic create, read, search, update, and delete
// operations against tables whose column set is discovered at runtime.
//
// The Executor resolves table metadata through a catalog.Registry, builds
// predicates with the catalog condition builder, optionally extends read
// queries with the entity-table join planned by the Enricher, and hands a
// before/after snapshot of every mutation to the audit recorder.
//
// Every mutating operation runs its pre-image read and its mutation inside
// one transaction, so a concurrent writer cannot slip between the two. The
// audit write happens after commit: the mutation's outcome is already
// decided, and a failed audit write is logged, never surfaced.
package engine
