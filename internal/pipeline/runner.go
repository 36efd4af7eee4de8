package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"refbuild/internal/fileutil"
	"refbuild/internal/ledger"
	"refbuild/internal/logging"
	"refbuild/internal/services"
)

// Stage is one step of a build.
type Stage interface {
	Name() string
	Execute(ctx context.Context, run *Run) error
}

// Recorder receives stage transitions and artifacts.
type Recorder interface {
	StageStarted(ctx context.Context, runID, stage string, position int) error
	StageFinished(ctx context.Context, runID, stage string, status ledger.Status, detail string) error
	RecordArtifact(ctx context.Context, artifact ledger.Artifact) error
}

// Runner executes stages in order and stops at the first failure.
type Runner struct {
	logger   *slog.Logger
	recorder Recorder
}

// NewRunner constructs a Runner. recorder may be nil.
func NewRunner(logger *slog.Logger, recorder Recorder) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logger, recorder: recorder}
}

// Run executes stages against run. The returned error names the failing stage.
func (r *Runner) Run(ctx context.Context, run *Run, stages []Stage) error {
	for position, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runStage(ctx, run, stage, position); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runStage(ctx context.Context, run *Run, stage Stage, position int) error {
	name := stage.Name()
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, r.logger)

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.Int("position", position),
	)
	r.record(stageLogger, "stage start", func() error {
		return r.recorder.StageStarted(stageCtx, run.ID, name, position)
	})

	start := time.Now()
	err := stage.Execute(stageCtx, run)
	detail, artifacts := run.takeStageOutput()
	if err != nil {
		return r.handleFailure(stageCtx, stageLogger, run, name, err)
	}

	for _, a := range artifacts {
		r.recordArtifact(stageCtx, stageLogger, run.ID, name, a)
	}
	r.record(stageLogger, "stage result", func() error {
		return r.recorder.StageFinished(stageCtx, run.ID, name, ledger.StatusSucceeded, detail)
	})

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", time.Since(start)),
		logging.String("detail", detail),
	)
	return nil
}

func (r *Runner) handleFailure(ctx context.Context, logger *slog.Logger, run *Run, name string, stageErr error) error {
	message := strings.TrimSpace(stageErr.Error())
	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", services.Kind(stageErr)),
		logging.Error(stageErr),
	)
	r.record(logger, "stage failure", func() error {
		return r.recorder.StageFinished(ctx, run.ID, name, ledger.StatusFailed, message)
	})
	return fmt.Errorf("stage %s: %w", name, stageErr)
}

// record applies a ledger write. The ledger is informational, so failures
// are logged and the build continues.
func (r *Runner) record(logger *slog.Logger, what string, write func() error) {
	if r.recorder == nil {
		return
	}
	if err := write(); err != nil {
		logging.WarnWithContext(logger, "failed to persist "+what, "ledger_write_failed",
			logging.String(logging.FieldImpact, "run history incomplete"),
			logging.Error(err),
		)
	}
}

func (r *Runner) recordArtifact(ctx context.Context, logger *slog.Logger, runID, stage string, a artifact) {
	if r.recorder == nil {
		return
	}
	entry := ledger.Artifact{RunID: runID, Stage: stage, Path: a.path}
	var err error
	if a.checksum {
		entry.SHA256, entry.Bytes, err = fileutil.Checksum(a.path)
	} else {
		entry.Bytes, err = treeSize(a.path)
	}
	if err != nil {
		logging.WarnWithContext(logger, "artifact not recorded", "artifact_unreadable",
			logging.String(logging.FieldImpact, "run history incomplete"),
			logging.String("path", a.path),
			logging.Error(err),
		)
		return
	}
	r.record(logger, "artifact", func() error {
		return r.recorder.RecordArtifact(ctx, entry)
	})
}

func treeSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(root); err != nil {
		return 0, err
	}
	return total, nil
}
