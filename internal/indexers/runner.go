package indexers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"refbuild/internal/config"
	"refbuild/internal/fileutil"
	"refbuild/internal/logging"
	"refbuild/internal/services"
)

// Output describes a finished index.
type Output struct {
	Tool     string
	Dir      string
	Link     string
	Duration time.Duration
}

// Option configures the Runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// Runner invokes the configured index builders.
type Runner struct {
	binaries map[string]string
	exec     Executor
	logger   *slog.Logger
}

// New constructs a Runner. binaries maps builder names to executables.
func New(binaries map[string]string, logger *slog.Logger, opts ...Option) *Runner {
	runner := &Runner{
		binaries: binaries,
		exec:     commandExecutor{},
		logger:   logging.NewComponentLogger(logger, "indexers"),
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// NewFromConfig wires the binary overrides from cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	binaries := make(map[string]string, len(tools))
	for _, name := range config.KnownIndexers() {
		binaries[name] = cfg.IndexerBinary(name)
	}
	return New(binaries, logger, opts...)
}

// Build runs one builder and repoints its assembly-kind symlink.
func (r *Runner) Build(ctx context.Context, name string, in Input) (Output, error) {
	t, ok := tools[name]
	if !ok {
		return Output{}, services.Wrap(services.ErrConfiguration, "index", "select builder", fmt.Sprintf("unknown index builder %q", name), nil)
	}
	binary := strings.TrimSpace(r.binaries[name])
	if binary == "" {
		return Output{}, services.Wrap(services.ErrConfiguration, "index", "select builder", fmt.Sprintf("no binary configured for %s", name), nil)
	}
	if err := validateInput(name, in); err != nil {
		return Output{}, err
	}

	dir := in.VersionedDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Output{}, services.Wrap(services.ErrExternalTool, "index", "create output directory", dir, err)
	}

	args := t.args(in, dir)
	logger := r.logger.With(logging.String("tool", name))
	logger.Info("index build started",
		logging.String(logging.FieldEventType, "index_build_started"),
		logging.String("binary", binary),
		logging.String("output_dir", dir),
	)

	start := time.Now()
	var tail outputTail
	err := r.exec.Run(ctx, binary, args, func(line string) {
		tail.add(line)
		logger.Debug("tool output", logging.String("line", line))
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		msg := fmt.Sprintf("%s failed", name)
		if last := tail.String(); last != "" {
			msg = fmt.Sprintf("%s failed: %s", name, last)
		}
		return Output{}, services.Wrap(services.ErrExternalTool, "index", name, msg, err)
	}

	link := in.LinkPath(name)
	if err := fileutil.ReplaceSymlink(filepath.Base(dir), link); err != nil {
		return Output{}, services.Wrap(services.ErrExternalTool, "index", "link index", link, err)
	}

	out := Output{Tool: name, Dir: dir, Link: link, Duration: time.Since(start)}
	logger.Info("index build completed",
		logging.String(logging.FieldEventType, "index_build_completed"),
		logging.Duration("duration", out.Duration),
		logging.String("link", link),
	)
	return out, nil
}

func validateInput(name string, in Input) error {
	var missing []string
	if in.BundleDir == "" {
		missing = append(missing, "bundle directory")
	}
	if in.AssemblyName == "" {
		missing = append(missing, "assembly name")
	}
	switch name {
	case config.IndexerBowtie2, config.IndexerBWA:
		if in.GenomeFasta == "" {
			missing = append(missing, "genome fasta")
		}
	case config.IndexerSTAR, config.IndexerRSEM:
		if len(in.SequenceFiles) == 0 {
			missing = append(missing, "sequence files")
		}
		if in.GTF == "" {
			missing = append(missing, "gtf")
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrValidation, "index", name, "missing "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// outputTail keeps the last few lines a tool printed for error messages.
type outputTail struct {
	lines []string
}

const tailLines = 3

func (o *outputTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	o.lines = append(o.lines, line)
	if len(o.lines) > tailLines {
		o.lines = o.lines[len(o.lines)-tailLines:]
	}
}

func (o *outputTail) String() string {
	return strings.Join(o.lines, " | ")
}
