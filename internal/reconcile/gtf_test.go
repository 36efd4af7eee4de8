package reconcile_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"refbuild/internal/fasta"
	"refbuild/internal/reconcile"
)

const sampleGTF = "#!genome-build GRCm38.p4\n" +
	"#!genome-version GRCm38\n" +
	"1\thavana\tgene\t3073253\t3074322\t.\t+\t.\tgene_id \"ENSMUSG00000102693\";\n" +
	"JH584299.1\tensembl\tgene\t100\t200\t.\t-\t.\tgene_id \"ENSMUSG00000095742\";\n" +
	"X\thavana\tgene\t10\t20\t.\t+\t.\tgene_id \"ENSMUSG00000000001\";\n"

func TestFilterGTF(t *testing.T) {
	var out bytes.Buffer
	stats, err := reconcile.FilterGTF(context.Background(), strings.NewReader(sampleGTF), &out, fasta.NewSequenceSet("1", "X"), nil)
	if err != nil {
		t.Fatalf("FilterGTF: %v", err)
	}
	got := out.String()
	if strings.Contains(got, "#!") {
		t.Fatalf("header survived: %q", got)
	}
	if strings.Contains(got, "JH584299.1") {
		t.Fatalf("unplaced scaffold survived: %q", got)
	}
	if stats.Headers != 2 || stats.Features != 3 || stats.Kept != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
