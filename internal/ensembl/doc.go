// Package ensembl resolves everything that depends on the Ensembl release
// number: the archived BioMart host, FTP file names and URLs, BioMart
// attribute spellings, and ortholog filter names.
//
// Ensembl renamed several of these over the supported span (67..110). The
// rules are encoded as release cutovers here so the rest of refbuild never
// parses version strings at runtime.
package ensembl
