// Package plan resolves a species key and Ensembl release into every value a
// build needs: assembly, FASTA variant, download URLs, BioMart queries and
// bundle paths.
//
// Resolve performs no I/O. All configuration errors (unknown species,
// unsupported release, unknown ortholog partner) surface here, before the
// pipeline touches the network or the filesystem.
package plan
