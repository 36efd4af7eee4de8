package plan_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"refbuild/internal/config"
	"refbuild/internal/plan"
	"refbuild/internal/services"
	"refbuild/internal/species"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.OutputRoot = "/refs"
	cfg.Paths.StateDir = t.TempDir()
	return &cfg
}

func TestResolveMouse82(t *testing.T) {
	p, err := plan.Resolve(testConfig(t), "mouse", 82)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Host != "sep2015.archive.ensembl.org" {
		t.Fatalf("host = %q", p.Host)
	}
	if p.GTFRelease != 82 || p.Assembly != "GRCm38" {
		t.Fatalf("unexpected release/assembly %d %s", p.GTFRelease, p.Assembly)
	}
	if p.AssemblyKind != species.PrimaryAssembly {
		t.Fatalf("kind = %s", p.AssemblyKind)
	}
	wantFasta := "https://ftp.ensembl.org/pub/release-82/fasta/mus_musculus/dna/Mus_musculus.GRCm38.dna.primary_assembly.fa.gz"
	if p.Fasta.URL != wantFasta {
		t.Fatalf("fasta url = %q", p.Fasta.URL)
	}
	wantGTF := "https://ftp.ensembl.org/pub/release-82/gtf/mus_musculus/Mus_musculus.GRCm38.82.gtf.gz"
	if p.GTF.URL != wantGTF {
		t.Fatalf("gtf url = %q", p.GTF.URL)
	}
	if p.BundleDir != filepath.Join("/refs", "mouse", "release-82") {
		t.Fatalf("bundle = %q", p.BundleDir)
	}
	if p.SequenceDir != filepath.Join(p.BundleDir, "primary_assembly") {
		t.Fatalf("sequence dir = %q", p.SequenceDir)
	}
	if p.GenomeFasta != filepath.Join(p.BundleDir, "mouse_primary_assembly.fa") {
		t.Fatalf("genome fasta = %q", p.GenomeFasta)
	}
	if p.FilteredGTF != filepath.Join(p.BundleDir, "Mus_musculus.GRCm38.82.gtf") {
		t.Fatalf("filtered gtf = %q", p.FilteredGTF)
	}
	if p.LockPath != filepath.Join(p.BundleDir, ".refbuild.lock") {
		t.Fatalf("lock = %q", p.LockPath)
	}

	if len(p.Orthologs) != 1 {
		t.Fatalf("expected only human partner, got %d", len(p.Orthologs))
	}
	ortholog := p.Orthologs[0]
	if ortholog.Request.Filter != "with_homolog_hsap" {
		t.Fatalf("filter = %q", ortholog.Request.Filter)
	}
	if ortholog.Table.Path != filepath.Join(p.BundleDir, "human_orthologs.tsv") {
		t.Fatalf("ortholog path = %q", ortholog.Table.Path)
	}
	if ortholog.Table.Reconciled() {
		t.Fatal("ortholog tables are not reconciled")
	}
	if !strings.HasPrefix(p.Genes.URL, "https://sep2015.archive.ensembl.org/biomart/martservice?query=") {
		t.Fatalf("genes url = %q", p.Genes.URL)
	}
	if !p.Genes.Reconciled() || !p.Transcripts.Reconciled() {
		t.Fatal("gene and transcript tables must be reconciled")
	}
	if len(p.Indexers) != 4 || p.Indexers[0] != config.IndexerBowtie2 {
		t.Fatalf("indexers = %v", p.Indexers)
	}
}

func TestResolveCastaneusPinsFileReleaseOnly(t *testing.T) {
	p, err := plan.Resolve(testConfig(t), "castaneus", 90)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Release != 90 || p.GTFRelease != 86 {
		t.Fatalf("releases = %d/%d", p.Release, p.GTFRelease)
	}
	if p.Host != "aug2017.archive.ensembl.org" {
		t.Fatalf("host should follow requested release, got %q", p.Host)
	}
	if p.AssemblyKind != species.TopLevel {
		t.Fatalf("kind = %s", p.AssemblyKind)
	}
	wantFasta := "https://ftp.ensembl.org/pub/release-86/fasta/mus_musculus_casteij/dna/Mus_musculus_casteij.CAST_EiJ_v1.dna.toplevel.fa.gz"
	if p.Fasta.URL != wantFasta {
		t.Fatalf("fasta url = %q", p.Fasta.URL)
	}
	if p.GTF.FileName != "Mus_musculus_casteij.CAST_EiJ_v1.86.gtf.gz" {
		t.Fatalf("gtf file = %q", p.GTF.FileName)
	}
	if p.BundleDir != filepath.Join("/refs", "castaneus", "release-90") {
		t.Fatalf("bundle = %q", p.BundleDir)
	}
	if len(p.Orthologs) != 2 {
		t.Fatalf("expected human and mouse partners, got %d", len(p.Orthologs))
	}
	if p.Orthologs[1].Request.Filter != "with_mmusculus_homolog" {
		t.Fatalf("mouse filter = %q", p.Orthologs[1].Request.Filter)
	}

	input := p.IndexInput([]string{"a.fa"})
	if input.VersionedDir("star") != filepath.Join(p.BundleDir, "star", "CAST_EiJ_v1.86") {
		t.Fatalf("versioned dir = %q", input.VersionedDir("star"))
	}
	if input.LinkPath("star") != filepath.Join(p.BundleDir, "star", "toplevel") {
		t.Fatalf("link = %q", input.LinkPath("star"))
	}
}

func TestResolveConfigurationErrors(t *testing.T) {
	cfg := testConfig(t)
	if _, err := plan.Resolve(cfg, "axolotl", 100); !errors.Is(err, services.ErrUnknownSpecies) {
		t.Fatalf("expected unknown species, got %v", err)
	}
	if _, err := plan.Resolve(cfg, "mouse", 66); !errors.Is(err, services.ErrUnsupportedRelease) {
		t.Fatalf("expected unsupported release, got %v", err)
	}
	if _, err := plan.Resolve(cfg, "mouse", 111); !errors.Is(err, services.ErrUnsupportedRelease) {
		t.Fatalf("expected unsupported release, got %v", err)
	}

	cfg.Orthologs.Partners = []string{"human", "yeti"}
	_, err := plan.Resolve(cfg, "mouse", 100)
	if !errors.Is(err, services.ErrConfiguration) || !errors.Is(err, services.ErrUnknownSpecies) {
		t.Fatalf("expected configuration error wrapping unknown species, got %v", err)
	}
	if !services.IsConfiguration(err) {
		t.Fatal("expected IsConfiguration")
	}
}

func TestResolvePreRelease76FastaNaming(t *testing.T) {
	p, err := plan.Resolve(testConfig(t), "human", 75)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Fasta.FileName != "Homo_sapiens.GRCh37.75.dna.primary_assembly.fa.gz" {
		t.Fatalf("fasta file = %q", p.Fasta.FileName)
	}
	if p.Orthologs[0].Request.Partner.Key != "mouse" {
		t.Fatalf("expected mouse partner, got %s", p.Orthologs[0].Request.Partner.Key)
	}
}

func TestSummaryIncludesFilters(t *testing.T) {
	p, err := plan.Resolve(testConfig(t), "rat", 100)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, row := range p.Summary() {
		if row[1] == "with_mmusculus_homolog" {
			found = true
		}
	}
	if !found {
		t.Fatalf("summary missing mouse filter: %v", p.Summary())
	}
}
