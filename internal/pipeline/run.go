package pipeline

import (
	"fmt"

	"refbuild/internal/fasta"
	"refbuild/internal/indexers"
	"refbuild/internal/plan"
)

// TableResult summarises one BioMart table written to the bundle.
type TableResult struct {
	Name    string
	Path    string
	Rows    int
	Dropped int
}

// artifact is a file or directory a stage asks the runner to record.
type artifact struct {
	path     string
	checksum bool
}

// Run carries the state shared by the stages of one build.
type Run struct {
	ID   string
	Plan *plan.Plan

	SequenceIDs   []string
	SequenceFiles []string
	Sequences     fasta.SequenceSet
	Indexes       []indexers.Output
	Tables        []TableResult

	detail    string
	artifacts []artifact
}

// NewRun prepares run state for p.
func NewRun(id string, p *plan.Plan) *Run {
	return &Run{ID: id, Plan: p}
}

// Note sets the ledger detail for the current stage.
func (r *Run) Note(format string, args ...any) {
	r.detail = fmt.Sprintf(format, args...)
}

func (r *Run) addFile(path string) {
	r.artifacts = append(r.artifacts, artifact{path: path, checksum: true})
}

func (r *Run) addDir(path string) {
	r.artifacts = append(r.artifacts, artifact{path: path})
}

func (r *Run) takeStageOutput() (string, []artifact) {
	detail, artifacts := r.detail, r.artifacts
	r.detail, r.artifacts = "", nil
	return detail, artifacts
}
