// Package ledger persists a history of bundle builds in SQLite.
//
// Each run records the resolved species, releases and assembly, the outcome
// of every pipeline stage and the artifacts written, with size and SHA256.
// The ledger is informational: builds never read it to decide what to do.
package ledger
