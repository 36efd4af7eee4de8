// Package pipeline runs a bundle build as a fixed sequence of stages:
// fetch, split, annotation, index and metadata.
//
// Each stage finishes before the next one starts and the first failure
// aborts the run. Stage boundaries are logged with event_type fields and
// recorded in the run ledger together with the artifacts each stage wrote.
// A file lock on the bundle directory rejects a second concurrent build of
// the same species and release.
package pipeline
