package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, species, ensembl_release, gtf_release, assembly, assembly_kind, bundle_dir, status, error_message, started_at, finished_at"

// StartRun inserts run with status running. StartedAt defaults to now.
func (s *Store) StartRun(ctx context.Context, run Run) (Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		return Run{}, errors.New("run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = StatusRunning
	_, err := s.exec(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Species,
		run.Release,
		run.GTFRelease,
		run.Assembly,
		run.AssemblyKind,
		run.BundleDir,
		run.Status,
		nil,
		formatTime(run.StartedAt),
		nil,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun records the terminal status of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status,
		nullableString(message),
		formatTime(time.Now()),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// StageStarted records that a stage began.
func (s *Store) StageStarted(ctx context.Context, runID, stage string, position int) error {
	_, err := s.exec(ctx,
		`INSERT INTO stages (run_id, name, position, status, started_at) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (run_id, name) DO UPDATE SET status = excluded.status, started_at = excluded.started_at,
             detail = NULL, finished_at = NULL`,
		runID,
		stage,
		position,
		StatusRunning,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("record stage start: %w", err)
	}
	return nil
}

// StageFinished records the outcome of a stage.
func (s *Store) StageFinished(ctx context.Context, runID, stage string, status Status, detail string) error {
	_, err := s.exec(ctx,
		`UPDATE stages SET status = ?, detail = ?, finished_at = ? WHERE run_id = ? AND name = ?`,
		status,
		nullableString(detail),
		formatTime(time.Now()),
		runID,
		stage,
	)
	if err != nil {
		return fmt.Errorf("record stage finish: %w", err)
	}
	return nil
}

// RecordArtifact stores (or refreshes) an artifact row.
func (s *Store) RecordArtifact(ctx context.Context, artifact Artifact) error {
	if artifact.RecordedAt.IsZero() {
		artifact.RecordedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO artifacts (run_id, stage, path, bytes, sha256, recorded_at) VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (run_id, path) DO UPDATE SET stage = excluded.stage, bytes = excluded.bytes,
             sha256 = excluded.sha256, recorded_at = excluded.recorded_at`,
		artifact.RunID,
		artifact.Stage,
		artifact.Path,
		artifact.Bytes,
		nullableString(artifact.SHA256),
		formatTime(artifact.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

// GetRun fetches a run by id. A missing run returns nil without error.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if species := strings.TrimSpace(filter.Species); species != "" {
		query += ` WHERE species = ?`
		args = append(args, species)
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Stages returns the stage records of a run in execution order.
func (s *Store) Stages(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, name, position, status, detail, started_at, finished_at
         FROM stages WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var (
			rec        StageRecord
			status     string
			detail     sql.NullString
			startedRaw sql.NullString
			finished   sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.Name, &rec.Position, &status, &detail, &startedRaw, &finished); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		rec.Status = Status(status)
		rec.Detail = detail.String
		rec.StartedAt = parseTime(startedRaw)
		rec.FinishedAt = parseTime(finished)
		stages = append(stages, rec)
	}
	return stages, rows.Err()
}

// Artifacts returns the artifacts of a run ordered by path.
func (s *Store) Artifacts(ctx context.Context, runID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, stage, path, bytes, sha256, recorded_at FROM artifacts WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var (
			a        Artifact
			sum      sql.NullString
			recorded sql.NullString
		)
		if err := rows.Scan(&a.RunID, &a.Stage, &a.Path, &a.Bytes, &sum, &recorded); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		a.SHA256 = sum.String
		a.RecordedAt = parseTime(recorded)
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		status     string
		errMessage sql.NullString
		startedRaw sql.NullString
		finished   sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Species,
		&run.Release,
		&run.GTFRelease,
		&run.Assembly,
		&run.AssemblyKind,
		&run.BundleDir,
		&status,
		&errMessage,
		&startedRaw,
		&finished,
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.ErrorMessage = errMessage.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finished)
	return &run, nil
}
