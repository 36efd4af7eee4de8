package reconcile_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"refbuild/internal/ensembl"
	"refbuild/internal/fasta"
	"refbuild/internal/reconcile"
)

func TestFilterByPrimaryAssemblyKeepsPlacedRows(t *testing.T) {
	set := fasta.NewSequenceSet("1", "2", "X")
	input := "G1\t1\tfoo\n" +
		"G2\tGL456210.1\tbar\n" +
		"G3\tX\tbaz\n" +
		"G4\tY\tqux\n"

	var out bytes.Buffer
	stats, err := reconcile.FilterByPrimaryAssembly(context.Background(), strings.NewReader(input), &out, set, ensembl.GeneChromosomeColumn, nil)
	if err != nil {
		t.Fatalf("FilterByPrimaryAssembly: %v", err)
	}
	want := "G1\t1\tfoo\nG3\tX\tbaz\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if stats.Read != 4 || stats.Kept != 2 || stats.Dropped() != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestFilterByPrimaryAssemblyPreservesDuplicatesAndCase(t *testing.T) {
	set := fasta.NewSequenceSet("1", "X")
	input := "T1\t1\tprotein_coding\tG1\n" +
		"T1\t1\tprotein_coding\tG1\n" +
		"T2\tx\tlncRNA\tG2\n"

	var out bytes.Buffer
	if _, err := reconcile.FilterByPrimaryAssembly(context.Background(), strings.NewReader(input), &out, set, ensembl.TranscriptChromosomeColumn, nil); err != nil {
		t.Fatalf("FilterByPrimaryAssembly: %v", err)
	}
	want := "T1\t1\tprotein_coding\tG1\nT1\t1\tprotein_coding\tG1\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestFilterByPrimaryAssemblyDropsEmptyAndShortRows(t *testing.T) {
	set := fasta.NewSequenceSet("1")
	input := "G1\t\tno chromosome\n" +
		"G2\n" +
		"G3\t1\tkept\n"

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	var out bytes.Buffer
	stats, err := reconcile.FilterByPrimaryAssembly(context.Background(), strings.NewReader(input), &out, set, 1, logger)
	if err != nil {
		t.Fatalf("FilterByPrimaryAssembly: %v", err)
	}
	if out.String() != "G3\t1\tkept\n" {
		t.Fatalf("output = %q", out.String())
	}
	if stats.Unplaced != 1 || stats.Mismatched != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	text := logs.String()
	if strings.Count(text, "annotation row dropped") != 1 {
		t.Fatalf("expected one mismatch warning, got %q", text)
	}
	if !strings.Contains(text, "event_type=annotation_mismatch") {
		t.Fatalf("expected event_type in %q", text)
	}
}

func TestFilterByPrimaryAssemblyIsIdempotent(t *testing.T) {
	set := fasta.NewSequenceSet("1", "2")
	input := "A\t1\nB\t3\nC\t2\nD\t1\n"

	var first bytes.Buffer
	if _, err := reconcile.FilterByPrimaryAssembly(context.Background(), strings.NewReader(input), &first, set, 1, nil); err != nil {
		t.Fatal(err)
	}
	var second bytes.Buffer
	if _, err := reconcile.FilterByPrimaryAssembly(context.Background(), bytes.NewReader(first.Bytes()), &second, set, 1, nil); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Fatalf("second pass changed output: %q vs %q", first.String(), second.String())
	}
}

func TestFilterByPrimaryAssemblyRejectsNegativeColumn(t *testing.T) {
	var out bytes.Buffer
	if _, err := reconcile.FilterByPrimaryAssembly(context.Background(), strings.NewReader("a\tb\n"), &out, fasta.NewSequenceSet(), -1, nil); err == nil {
		t.Fatal("expected error for negative column")
	}
}
