// Package indexers drives the external alignment index builders (bowtie2,
// bwa, STAR and RSEM).
//
// Each builder writes into <bundle>/<tool>/<assembly>.<gtf_release> and a
// symlink <bundle>/<tool>/<assembly_kind> is repointed at the fresh
// directory once the tool exits successfully. Arguments are fixed per tool;
// nothing from the tool output is interpreted beyond its exit status.
package indexers
