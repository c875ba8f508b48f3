// Package history records training runs in a SQLite ledger.
//
// Every trainer invocation becomes one row in the runs table: inserted as
// running when the trainer starts and updated with its exit code when it
// finishes. Rows left as running belong to runs that were interrupted. The
// ledger lives next to the trainer logs by default ({logs}/history.db).
package history
