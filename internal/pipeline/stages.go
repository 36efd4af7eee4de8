package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"refbuild/internal/fasta"
	"refbuild/internal/fileutil"
	"refbuild/internal/indexers"
	"refbuild/internal/logging"
	"refbuild/internal/plan"
	"refbuild/internal/reconcile"
	"refbuild/internal/services"
	"refbuild/internal/transfer"
)

// Stage names in execution order.
const (
	StageFetch      = "fetch"
	StageSplit      = "split"
	StageAnnotation = "annotation"
	StageIndex      = "index"
	StageMetadata   = "metadata"
)

// Fetcher downloads reference files and BioMart tables.
type Fetcher interface {
	FetchGunzip(ctx context.Context, url, dst string) (transfer.Result, error)
	Fetch(ctx context.Context, url, dst string) (transfer.Result, error)
}

// IndexBuilder runs one external index builder.
type IndexBuilder interface {
	Build(ctx context.Context, name string, in indexers.Input) (indexers.Output, error)
}

// Stages returns the build stages in execution order.
func Stages(fetcher Fetcher, builder IndexBuilder, logger *slog.Logger) []Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return []Stage{
		fetchStage{fetcher: fetcher},
		splitStage{},
		annotationStage{logger: logger},
		indexStage{builder: builder},
		metadataStage{fetcher: fetcher, logger: logger},
	}
}

type fetchStage struct {
	fetcher Fetcher
}

func (fetchStage) Name() string { return StageFetch }

func (s fetchStage) Execute(ctx context.Context, run *Run) error {
	var total int64
	for _, dl := range []plan.Download{run.Plan.Fasta, run.Plan.GTF} {
		result, err := s.fetcher.FetchGunzip(ctx, dl.URL, dl.Path)
		if err != nil {
			return err
		}
		total += result.Bytes
		run.addFile(dl.Path)
	}
	run.Note("2 files, %d bytes decompressed", total)
	return nil
}

type splitStage struct{}

func (splitStage) Name() string { return StageSplit }

func (splitStage) Execute(ctx context.Context, run *Run) error {
	p := run.Plan
	// Leftovers from an earlier attempt would leak into the membership set.
	if err := os.RemoveAll(p.SequenceDir); err != nil {
		return services.Wrap(services.ErrFilesystem, StageSplit, "reset sequence directory", p.SequenceDir, err)
	}

	src, err := os.Open(p.Fasta.Path)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, StageSplit, "open fasta", p.Fasta.Path, err)
	}
	defer src.Close()

	ids, err := fasta.Split(ctx, src, p.SequenceDir)
	if err != nil {
		return err
	}
	files := make([]string, len(ids))
	for i, id := range ids {
		files[i] = filepath.Join(p.SequenceDir, id+fasta.Extension)
	}
	if err := fasta.Concatenate(p.SequenceDir, ids, p.GenomeFasta); err != nil {
		return err
	}

	run.SequenceIDs = ids
	run.SequenceFiles = files
	run.addDir(p.SequenceDir)
	run.addFile(p.GenomeFasta)
	run.Note("%d sequences", len(ids))
	return nil
}

type annotationStage struct {
	logger *slog.Logger
}

func (annotationStage) Name() string { return StageAnnotation }

func (s annotationStage) Execute(ctx context.Context, run *Run) error {
	p := run.Plan
	set, err := sequenceSet(run)
	if err != nil {
		return err
	}

	src, err := os.Open(p.GTF.Path)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, StageAnnotation, "open gtf", p.GTF.Path, err)
	}
	defer src.Close()

	var stats reconcile.GTFStats
	err = fileutil.WriteAtomic(p.FilteredGTF, func(w io.Writer) error {
		var filterErr error
		stats, filterErr = reconcile.FilterGTF(ctx, src, w, set, logging.WithContext(ctx, s.logger))
		return filterErr
	})
	if err != nil {
		marker := services.ErrFilesystem
		if errors.Is(err, services.ErrMalformedReference) {
			marker = services.ErrMalformedReference
		}
		return services.Wrap(marker, StageAnnotation, "filter gtf", p.FilteredGTF, err)
	}
	run.addFile(p.FilteredGTF)
	run.Note("%d of %d features kept", stats.Kept, stats.Features)
	return nil
}

type indexStage struct {
	builder IndexBuilder
}

func (indexStage) Name() string { return StageIndex }

func (s indexStage) Execute(ctx context.Context, run *Run) error {
	p := run.Plan
	if len(p.Indexers) == 0 {
		run.Note("no index builders enabled")
		return nil
	}
	if len(run.SequenceFiles) == 0 {
		files, err := sequenceFiles(run)
		if err != nil {
			return err
		}
		run.SequenceFiles = files
	}
	input := p.IndexInput(run.SequenceFiles)
	for _, name := range p.Indexers {
		out, err := s.builder.Build(ctx, name, input)
		if err != nil {
			return err
		}
		run.Indexes = append(run.Indexes, out)
		run.addDir(out.Dir)
	}
	run.Note("%d indexes built", len(run.Indexes))
	return nil
}

type metadataStage struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func (metadataStage) Name() string { return StageMetadata }

func (s metadataStage) Execute(ctx context.Context, run *Run) error {
	p := run.Plan
	set, err := sequenceSet(run)
	if err != nil {
		return err
	}
	logger := logging.WithContext(ctx, s.logger)

	tables := []plan.Table{p.Genes, p.Transcripts}
	for _, o := range p.Orthologs {
		tables = append(tables, o.Table)
	}
	for _, table := range tables {
		result, err := s.writeTable(ctx, run, table, set, logger)
		if err != nil {
			return err
		}
		run.Tables = append(run.Tables, result)
		run.addFile(table.Path)
	}
	run.Note("%d tables written", len(run.Tables))
	return nil
}

func (s metadataStage) writeTable(ctx context.Context, run *Run, table plan.Table, set fasta.SequenceSet, logger *slog.Logger) (TableResult, error) {
	raw := filepath.Join(run.Plan.BundleDir, "downloads", table.Name+".biomart.tsv")
	if _, err := s.fetcher.Fetch(ctx, table.URL, raw); err != nil {
		return TableResult{}, err
	}
	if err := checkBioMartResponse(raw); err != nil {
		return TableResult{}, services.Wrap(services.ErrTransfer, StageMetadata, "query biomart", table.Name, err)
	}

	src, err := os.Open(raw)
	if err != nil {
		return TableResult{}, services.Wrap(services.ErrTransfer, StageMetadata, "open table", raw, err)
	}
	defer src.Close()

	result := TableResult{Name: table.Name, Path: table.Path}
	err = fileutil.WriteAtomic(table.Path, func(w io.Writer) error {
		if !table.Reconciled() {
			n, err := copyLines(src, w)
			result.Rows = n
			return err
		}
		stats, err := reconcile.FilterByPrimaryAssembly(ctx, src, w, set, table.Column,
			logger.With(logging.String("table", table.Name)))
		result.Rows = stats.Kept
		result.Dropped = stats.Dropped()
		return err
	})
	if err != nil {
		return TableResult{}, services.Wrap(services.ErrAnnotationMismatch, StageMetadata, "write table", table.Path, err)
	}
	logger.Info("table written",
		logging.String("table", table.Name),
		logging.Int("rows", result.Rows),
		logging.Int("dropped", result.Dropped),
	)
	return result, nil
}

// BioMart reports query errors in a 200 response body.
var bioMartErrorPrefixes = [][]byte{
	[]byte("Query ERROR"),
	[]byte("ERROR"),
	[]byte("<html"),
}

func checkBioMartResponse(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadBytes('\n')
	if err != nil && err != io.EOF {
		return err
	}
	line = bytes.TrimSpace(line)
	for _, prefix := range bioMartErrorPrefixes {
		if bytes.HasPrefix(line, prefix) {
			return fmt.Errorf("biomart error response: %s", line)
		}
	}
	return nil
}

func copyLines(r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	out := bufio.NewWriter(w)
	rows := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rows++
		if _, err := out.Write(line); err != nil {
			return rows, err
		}
		if err := out.WriteByte('\n'); err != nil {
			return rows, err
		}
	}
	if err := scanner.Err(); err != nil {
		return rows, err
	}
	return rows, out.Flush()
}

// sequenceSet returns the membership set, reading the split directory when
// the split stage did not run in this process.
func sequenceSet(run *Run) (fasta.SequenceSet, error) {
	if run.Sequences != nil {
		return run.Sequences, nil
	}
	set, err := fasta.ReadSequenceSet(run.Plan.SequenceDir)
	if err != nil {
		return nil, err
	}
	run.Sequences = set
	return set, nil
}

func sequenceFiles(run *Run) ([]string, error) {
	set, err := sequenceSet(run)
	if err != nil {
		return nil, err
	}
	ids := set.Sorted()
	files := make([]string, len(ids))
	for i, id := range ids {
		files[i] = filepath.Join(run.Plan.SequenceDir, id+fasta.Extension)
	}
	return files, nil
}
