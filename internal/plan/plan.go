package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"refbuild/internal/config"
	"refbuild/internal/ensembl"
	"refbuild/internal/indexers"
	"refbuild/internal/services"
	"refbuild/internal/species"
)

// LockFileName is the per-bundle lock file.
const LockFileName = ".refbuild.lock"

// Download is one file fetched from the FTP mirror.
type Download struct {
	URL      string
	FileName string
	// Path is the decompressed location inside the bundle.
	Path string
}

// Table is one BioMart table written to the bundle.
type Table struct {
	Name   string
	Query  ensembl.Query
	URL    string
	Column int
	Path   string
}

// Ortholog pairs an ortholog request with its download.
type Ortholog struct {
	Request ensembl.OrthologRequest
	Table   Table
}

// Plan holds every derived value of one run. It is never mutated after
// Resolve returns.
type Plan struct {
	Species      species.Record
	Release      int
	GTFRelease   int
	Assembly     string
	AssemblyKind species.AssemblyKind
	Host         string

	Fasta Download
	GTF   Download

	BundleDir   string
	SequenceDir string
	GenomeFasta string
	FilteredGTF string
	LockPath    string

	Genes       Table
	Transcripts Table
	Orthologs   []Ortholog

	Indexers []string
	Threads  int
	Overhang int
}

// Resolve builds the plan for speciesKey at release under cfg.
func Resolve(cfg *config.Config, speciesKey string, release int) (*Plan, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "plan", "resolve", "configuration required", nil)
	}
	rec, err := species.Resolve(speciesKey)
	if err != nil {
		return nil, err
	}
	host, err := ensembl.ResolveEndpoint(release)
	if err != nil {
		return nil, err
	}

	partnerKeys := ensembl.Partners(rec.Key, cfg.Orthologs.Partners)
	partners := make([]species.Record, 0, len(partnerKeys))
	for _, key := range partnerKeys {
		partner, err := species.Resolve(key)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "plan", "resolve ortholog partner", "orthologs.partners", err)
		}
		partners = append(partners, partner)
	}

	gtfRelease := ensembl.ResolveGTFVersion(rec, release)
	kind := species.DeriveAssemblyKind(rec.Key)
	bundle := filepath.Join(cfg.Paths.OutputRoot, rec.Key, fmt.Sprintf("release-%d", release))
	downloads := filepath.Join(bundle, "downloads")

	fastaName := ensembl.FastaFileName(rec, gtfRelease, kind)
	gtfName := ensembl.GTFFileName(rec, gtfRelease)

	p := &Plan{
		Species:      rec,
		Release:      release,
		GTFRelease:   gtfRelease,
		Assembly:     rec.AssemblyFor(gtfRelease),
		AssemblyKind: kind,
		Host:         host,
		Fasta: Download{
			URL:      ensembl.FastaURL(cfg.Transfer.FTPBaseURL, rec, gtfRelease, kind),
			FileName: fastaName,
			Path:     filepath.Join(downloads, strings.TrimSuffix(fastaName, ".gz")),
		},
		GTF: Download{
			URL:      ensembl.GTFURL(cfg.Transfer.FTPBaseURL, rec, gtfRelease),
			FileName: gtfName,
			Path:     filepath.Join(downloads, strings.TrimSuffix(gtfName, ".gz")),
		},
		BundleDir:   bundle,
		SequenceDir: filepath.Join(bundle, kind.String()),
		GenomeFasta: filepath.Join(bundle, fmt.Sprintf("%s_%s.fa", rec.Key, kind)),
		FilteredGTF: filepath.Join(bundle, strings.TrimSuffix(gtfName, ".gz")),
		LockPath:    filepath.Join(bundle, LockFileName),
		Threads:     cfg.Indexers.Threads,
		Overhang:    cfg.Indexers.Overhang,
	}
	for _, name := range config.KnownIndexers() {
		if cfg.IndexerEnabled(name) {
			p.Indexers = append(p.Indexers, name)
		}
	}

	if p.Genes, err = newTable("genes", ensembl.GeneQuery(rec, release), host, ensembl.GeneChromosomeColumn, bundle); err != nil {
		return nil, err
	}
	if p.Transcripts, err = newTable("transcripts", ensembl.TranscriptQuery(rec), host, ensembl.TranscriptChromosomeColumn, bundle); err != nil {
		return nil, err
	}
	for _, partner := range partners {
		req := ensembl.OrthologQuery(rec, partner, release)
		// Ortholog tables are keyed on the target gene id only; they carry no
		// chromosome and are not reconciled.
		table, err := newTable(partner.Key+"_orthologs", req.Query, host, -1, bundle)
		if err != nil {
			return nil, err
		}
		p.Orthologs = append(p.Orthologs, Ortholog{Request: req, Table: table})
	}
	return p, nil
}

func newTable(name string, query ensembl.Query, host string, column int, bundle string) (Table, error) {
	url, err := query.URL(host)
	if err != nil {
		return Table{}, services.Wrap(services.ErrConfiguration, "plan", "build biomart query", name, err)
	}
	return Table{
		Name:   name,
		Query:  query,
		URL:    url,
		Column: column,
		Path:   filepath.Join(bundle, name+".tsv"),
	}, nil
}

// Reconciled reports whether the table is filtered against the sequence set.
func (t Table) Reconciled() bool {
	return t.Column >= 0
}

// IndexInput assembles builder input from the split sequence files.
func (p *Plan) IndexInput(sequenceFiles []string) indexers.Input {
	return indexers.Input{
		BundleDir:     p.BundleDir,
		AssemblyName:  p.Assembly,
		AssemblyKind:  p.AssemblyKind,
		GTFRelease:    p.GTFRelease,
		GenomeFasta:   p.GenomeFasta,
		SequenceFiles: sequenceFiles,
		GTF:           p.FilteredGTF,
		Threads:       p.Threads,
		Overhang:      p.Overhang,
	}
}

// Summary returns label/value pairs describing the plan for display.
func (p *Plan) Summary() [][2]string {
	rows := [][2]string{
		{"Species", fmt.Sprintf("%s (%s)", p.Species.Key, p.Species.Binomial())},
		{"Release", fmt.Sprintf("%d", p.Release)},
		{"Annotation release", fmt.Sprintf("%d", p.GTFRelease)},
		{"Assembly", p.Assembly},
		{"Assembly kind", p.AssemblyKind.String()},
		{"BioMart host", p.Host},
		{"FASTA", p.Fasta.URL},
		{"GTF", p.GTF.URL},
		{"Bundle", p.BundleDir},
	}
	for _, o := range p.Orthologs {
		rows = append(rows, [2]string{"Ortholog filter (" + o.Request.Partner.Key + ")", o.Request.Filter})
	}
	rows = append(rows, [2]string{"Indexers", strings.Join(p.Indexers, ", ")})
	return rows
}
