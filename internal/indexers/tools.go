package indexers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"refbuild/internal/config"
	"refbuild/internal/species"
)

// Input carries everything a builder needs for one bundle.
type Input struct {
	BundleDir    string
	AssemblyName string
	AssemblyKind species.AssemblyKind
	GTFRelease   int
	// GenomeFasta is the concatenated assembly used by bowtie2 and bwa.
	GenomeFasta string
	// SequenceFiles are the per-sequence files used by STAR and RSEM.
	SequenceFiles []string
	GTF           string
	Threads       int
	Overhang      int
}

// VersionedDir returns <bundle>/<tool>/<assembly>.<gtf_release>.
func (in Input) VersionedDir(tool string) string {
	return filepath.Join(in.BundleDir, tool, fmt.Sprintf("%s.%d", in.AssemblyName, in.GTFRelease))
}

// LinkPath returns <bundle>/<tool>/<assembly_kind>.
func (in Input) LinkPath(tool string) string {
	return filepath.Join(in.BundleDir, tool, in.AssemblyKind.String())
}

func (in Input) prefix(dir string) string {
	return filepath.Join(dir, in.AssemblyName)
}

type tool struct {
	name string
	args func(in Input, dir string) []string
}

var tools = map[string]tool{
	config.IndexerBowtie2: {
		name: config.IndexerBowtie2,
		args: func(in Input, dir string) []string {
			return []string{"--threads", strconv.Itoa(in.Threads), in.GenomeFasta, in.prefix(dir)}
		},
	},
	config.IndexerBWA: {
		name: config.IndexerBWA,
		args: func(in Input, dir string) []string {
			return []string{"index", "-p", in.prefix(dir), in.GenomeFasta}
		},
	},
	config.IndexerSTAR: {
		name: config.IndexerSTAR,
		args: func(in Input, dir string) []string {
			args := []string{
				"--runMode", "genomeGenerate",
				"--runThreadN", strconv.Itoa(in.Threads),
				"--genomeDir", dir,
				"--genomeFastaFiles",
			}
			args = append(args, in.SequenceFiles...)
			return append(args,
				"--sjdbGTFfile", in.GTF,
				"--sjdbOverhang", strconv.Itoa(in.Overhang),
			)
		},
	},
	config.IndexerRSEM: {
		name: config.IndexerRSEM,
		args: func(in Input, dir string) []string {
			return []string{
				"--gtf", in.GTF,
				"--num-threads", strconv.Itoa(in.Threads),
				strings.Join(in.SequenceFiles, ","),
				in.prefix(dir),
			}
		},
	},
}

// Arguments returns the command line arguments the named tool is run with.
func Arguments(name string, in Input) ([]string, error) {
	t, ok := tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown index builder %q", name)
	}
	return t.args(in, in.VersionedDir(name)), nil
}
