// Package species holds the static registry of species refbuild knows how to
// build bundles for.
//
// Each Record maps a short key ("mouse") to the Ensembl scientific name and
// the assembly names that were current across the supported release span.
// The registry is compiled into the binary; an unknown key is a fatal
// configuration error raised before any download starts.
package species
