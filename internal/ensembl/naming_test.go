package ensembl_test

import (
	"testing"

	"refbuild/internal/ensembl"
	"refbuild/internal/species"
)

func mustResolve(t *testing.T, key string) species.Record {
	t.Helper()
	rec, err := species.Resolve(key)
	if err != nil {
		t.Fatalf("resolve %s: %v", key, err)
	}
	return rec
}

func TestResolveGTFVersion(t *testing.T) {
	mouse := mustResolve(t, "mouse")
	if got := ensembl.ResolveGTFVersion(mouse, 82); got != 82 {
		t.Fatalf("mouse@82 = %d, want 82", got)
	}
	cast := mustResolve(t, "castaneus")
	for _, requested := range []int{70, 86, 90, 110} {
		if got := ensembl.ResolveGTFVersion(cast, requested); got != 86 {
			t.Fatalf("castaneus@%d = %d, want 86", requested, got)
		}
	}
}

func TestShortNames(t *testing.T) {
	cases := []struct {
		scientific string
		short      string
		four       string
	}{
		{"mus_musculus", "mmusculus", "mmus"},
		{"homo_sapiens", "hsapiens", "hsap"},
		{"danio_rerio", "drerio", "drer"},
		{"rattus_norvegicus", "rnorvegicus", "rnor"},
		{"mus_musculus_casteij", "mmcasteij", "mmca"},
		{"Mus_Musculus", "mmusculus", "mmus"},
	}
	for _, tc := range cases {
		if got := ensembl.ShortName(tc.scientific); got != tc.short {
			t.Errorf("ShortName(%q) = %q, want %q", tc.scientific, got, tc.short)
		}
		if got := ensembl.FourCharName(tc.scientific); got != tc.four {
			t.Errorf("FourCharName(%q) = %q, want %q", tc.scientific, got, tc.four)
		}
	}
	if got := ensembl.ShortName("ecoli"); got != "ecoli" {
		t.Fatalf("single component name should pass through, got %q", got)
	}
}

func TestBuildFilterNameCutover(t *testing.T) {
	mouse := mustResolve(t, "mouse")
	if got := ensembl.BuildFilterName(mouse, 90); got != "with_mmusculus_homolog" {
		t.Fatalf("release 90 filter = %q", got)
	}
	if got := ensembl.BuildFilterName(mouse, 86); got != "with_mmusculus_homolog" {
		t.Fatalf("release 86 filter = %q", got)
	}
	if got := ensembl.BuildFilterName(mouse, 85); got != "with_homolog_mmus" {
		t.Fatalf("release 85 filter = %q", got)
	}
	if got := ensembl.BuildFilterName(mouse, 80); got != "with_homolog_mmus" {
		t.Fatalf("release 80 filter = %q", got)
	}
}

func TestFastaFileNames(t *testing.T) {
	human := mustResolve(t, "human")
	if got := ensembl.FastaFileName(human, 75, species.PrimaryAssembly); got != "Homo_sapiens.GRCh37.75.dna.primary_assembly.fa.gz" {
		t.Fatalf("release 75 fasta = %q", got)
	}
	if got := ensembl.FastaFileName(human, 76, species.PrimaryAssembly); got != "Homo_sapiens.GRCh38.dna.primary_assembly.fa.gz" {
		t.Fatalf("release 76 fasta = %q", got)
	}
	cast := mustResolve(t, "castaneus")
	if got := ensembl.FastaFileName(cast, 86, species.TopLevel); got != "Mus_musculus_casteij.CAST_EiJ_v1.dna.toplevel.fa.gz" {
		t.Fatalf("castaneus fasta = %q", got)
	}
}

func TestURLs(t *testing.T) {
	mouse := mustResolve(t, "mouse")
	wantFasta := "https://ftp.ensembl.org/pub/release-82/fasta/mus_musculus/dna/Mus_musculus.GRCm38.dna.primary_assembly.fa.gz"
	if got := ensembl.FastaURL("", mouse, 82, species.PrimaryAssembly); got != wantFasta {
		t.Fatalf("fasta url = %q", got)
	}
	wantGTF := "http://mirror.example/pub/release-82/gtf/mus_musculus/Mus_musculus.GRCm38.82.gtf.gz"
	if got := ensembl.GTFURL("http://mirror.example/pub/", mouse, 82); got != wantGTF {
		t.Fatalf("gtf url = %q", got)
	}
}

func TestAttributeCutovers(t *testing.T) {
	if got := ensembl.GeneNameAttribute(75); got != "external_gene_id" {
		t.Fatalf("gene name attr @75 = %q", got)
	}
	if got := ensembl.GeneNameAttribute(76); got != "external_gene_name" {
		t.Fatalf("gene name attr @76 = %q", got)
	}
	if got := ensembl.EntrezAttribute(96); got != "entrezgene" {
		t.Fatalf("entrez attr @96 = %q", got)
	}
	if got := ensembl.EntrezAttribute(97); got != "entrezgene_id" {
		t.Fatalf("entrez attr @97 = %q", got)
	}
}
