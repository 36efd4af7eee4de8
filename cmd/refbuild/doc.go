// Package main hosts the refbuild CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves a species and Ensembl release into a
// build plan, runs the bundle pipeline, and exposes the species registry,
// release table, run ledger and dependency checks. Configuration loading and
// logger construction are centralized in the command context so subcommands
// only deal with presentation.
package main
