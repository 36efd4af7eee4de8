// Package fasta splits a whole-genome FASTA stream into one file per
// sequence record and exposes the resulting sequence identifiers as the
// membership set used to filter annotation tables.
package fasta
