package ensembl

import (
	"fmt"
	"strings"

	"refbuild/internal/species"
)

const (
	// HomologyFilterCutover is the first release using with_<short>_homolog
	// ortholog filters.
	HomologyFilterCutover = 86
	// UnversionedFastaCutover is the first release whose FASTA file names no
	// longer carry the release number.
	UnversionedFastaCutover = 76
	// GeneNameCutover is the first release exposing external_gene_name.
	GeneNameCutover = 76
	// EntrezCutover is the first release exposing entrezgene_id.
	EntrezCutover = 97

	DefaultFTPBase = "https://ftp.ensembl.org/pub"
)

// ResolveGTFVersion returns the release whose files should be downloaded.
// Species pinned to a historical release always use it; the BioMart host is
// resolved from the requested release separately and is never pinned.
func ResolveGTFVersion(rec species.Record, requested int) int {
	if rec.PinnedRelease > 0 {
		return rec.PinnedRelease
	}
	return requested
}

// ShortName derives the BioMart short name from a scientific name: the first
// letter of every component except the last, followed by the last component.
// "mus_musculus" becomes "mmusculus"; "mus_musculus_casteij" becomes
// "mmcasteij".
func ShortName(scientific string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(scientific)), "_")
	if len(parts) < 2 {
		return parts[0]
	}
	var b strings.Builder
	for _, part := range parts[:len(parts)-1] {
		if part == "" {
			continue
		}
		b.WriteByte(part[0])
	}
	b.WriteString(parts[len(parts)-1])
	return b.String()
}

// FourCharName truncates ShortName to the four characters used by pre-86
// homolog filters ("mmus").
func FourCharName(scientific string) string {
	short := ShortName(scientific)
	if len(short) <= 4 {
		return short
	}
	return short[:4]
}

// BuildFilterName returns the BioMart filter restricting genes to those with
// an ortholog in partner.
func BuildFilterName(partner species.Record, release int) string {
	if release >= HomologyFilterCutover {
		return "with_" + ShortName(partner.ScientificName) + "_homolog"
	}
	return "with_homolog_" + FourCharName(partner.ScientificName)
}

// Dataset returns the BioMart gene dataset name for rec.
func Dataset(rec species.Record) string {
	return ShortName(rec.ScientificName) + "_gene_ensembl"
}

// FastaFileName returns the genome FASTA name published for release.
func FastaFileName(rec species.Record, release int, kind species.AssemblyKind) string {
	assembly := rec.AssemblyFor(release)
	if release < UnversionedFastaCutover {
		return fmt.Sprintf("%s.%s.%d.dna.%s.fa.gz", rec.FileStem(), assembly, release, kind)
	}
	return fmt.Sprintf("%s.%s.dna.%s.fa.gz", rec.FileStem(), assembly, kind)
}

// GTFFileName returns the gene annotation file name published for release.
func GTFFileName(rec species.Record, release int) string {
	return fmt.Sprintf("%s.%s.%d.gtf.gz", rec.FileStem(), rec.AssemblyFor(release), release)
}

// FastaURL returns the download URL for the genome FASTA.
func FastaURL(base string, rec species.Record, release int, kind species.AssemblyKind) string {
	return fmt.Sprintf("%s/release-%d/fasta/%s/dna/%s",
		normalizeBase(base), release, rec.ScientificName, FastaFileName(rec, release, kind))
}

// GTFURL returns the download URL for the gene annotation file.
func GTFURL(base string, rec species.Record, release int) string {
	return fmt.Sprintf("%s/release-%d/gtf/%s/%s",
		normalizeBase(base), release, rec.ScientificName, GTFFileName(rec, release))
}

// GeneNameAttribute returns the BioMart attribute holding the gene symbol.
func GeneNameAttribute(release int) string {
	if release < GeneNameCutover {
		return "external_gene_id"
	}
	return "external_gene_name"
}

// EntrezAttribute returns the BioMart attribute holding the Entrez gene id.
func EntrezAttribute(release int) string {
	if release < EntrezCutover {
		return "entrezgene"
	}
	return "entrezgene_id"
}

func normalizeBase(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return DefaultFTPBase
	}
	return base
}
