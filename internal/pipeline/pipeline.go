package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"refbuild/internal/ledger"
	"refbuild/internal/logging"
	"refbuild/internal/plan"
	"refbuild/internal/services"
)

// ErrBundleLocked indicates another process is building the same bundle.
var ErrBundleLocked = errors.New("bundle is locked by another run")

// Ledger is the run history the pipeline writes to.
type Ledger interface {
	Recorder
	StartRun(ctx context.Context, run ledger.Run) (ledger.Run, error)
	FinishRun(ctx context.Context, runID string, status ledger.Status, runErr error) error
}

// Dependencies wires the collaborators of a Pipeline.
type Dependencies struct {
	Fetcher Fetcher
	Indexer IndexBuilder
	Ledger  Ledger
	Logger  *slog.Logger
	// Stages overrides the default stage list (primarily for tests).
	Stages []Stage
}

// Pipeline builds reference bundles.
type Pipeline struct {
	deps   Dependencies
	logger *slog.Logger
}

// Result summarises a finished build.
type Result struct {
	RunID    string
	Bundle   string
	Duration time.Duration
	Run      *Run
}

// New constructs a Pipeline.
func New(deps Dependencies) (*Pipeline, error) {
	if deps.Stages == nil && (deps.Fetcher == nil || deps.Indexer == nil) {
		return nil, errors.New("pipeline requires a fetcher and an index builder")
	}
	return &Pipeline{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "pipeline"),
	}, nil
}

// Build runs every stage for p while holding the bundle lock.
func (pl *Pipeline) Build(ctx context.Context, p *plan.Plan) (*Result, error) {
	if p == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "build", "plan required", nil)
	}
	if err := os.MkdirAll(p.BundleDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bundle directory: %w", err)
	}

	lock := flock.New(p.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire bundle lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBundleLocked, p.BundleDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			pl.logger.Warn("failed to release bundle lock", logging.String("lock", p.LockPath), logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithSpecies(ctx, p.Species.Key)
	logger := logging.WithContext(ctx, pl.logger)

	run := NewRun(runID, p)
	var recorder Recorder
	if pl.deps.Ledger != nil {
		_, err := pl.deps.Ledger.StartRun(ctx, ledger.Run{
			ID:           runID,
			Species:      p.Species.Key,
			Release:      p.Release,
			GTFRelease:   p.GTFRelease,
			Assembly:     p.Assembly,
			AssemblyKind: p.AssemblyKind.String(),
			BundleDir:    p.BundleDir,
		})
		if err != nil {
			logging.WarnWithContext(logger, "run not recorded in ledger", "ledger_write_failed",
				logging.String(logging.FieldImpact, "run history incomplete"),
				logging.Error(err),
			)
		} else {
			recorder = pl.deps.Ledger
		}
	}

	stages := pl.deps.Stages
	if stages == nil {
		stages = Stages(pl.deps.Fetcher, pl.deps.Indexer, pl.logger)
	}

	logger.Info("build started",
		logging.String(logging.FieldEventType, "build_start"),
		logging.Int("release", p.Release),
		logging.Int("gtf_release", p.GTFRelease),
		logging.String("assembly", p.Assembly),
		logging.String("bundle", p.BundleDir),
	)
	start := time.Now()
	runErr := NewRunner(pl.logger, recorder).Run(ctx, run, stages)
	result := &Result{RunID: runID, Bundle: p.BundleDir, Duration: time.Since(start), Run: run}

	if recorder != nil {
		status := ledger.StatusSucceeded
		if runErr != nil {
			status = ledger.StatusFailed
		}
		// The run context may already be cancelled; the final status is still recorded.
		if err := pl.deps.Ledger.FinishRun(context.WithoutCancel(ctx), runID, status, runErr); err != nil {
			logger.Warn("failed to record run result", logging.Error(err))
		}
	}

	if runErr != nil {
		logger.Error("build failed",
			logging.String(logging.FieldEventType, "build_failure"),
			logging.Duration("duration", result.Duration),
			logging.Error(runErr),
		)
		return result, runErr
	}
	logger.Info("build completed",
		logging.String(logging.FieldEventType, "build_complete"),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}
