package postgres

import (
	"context"

	"bioeq/domain/study"

	"github.com/jmoiron/sqlx"
)

// RunArchiveImpl implements ports.RunArchive for PostgreSQL
type RunArchiveImpl struct {
	db *sqlx.DB
}

// NewRunArchive creates a new PostgreSQL run archive
func NewRunArchive(db *sqlx.DB) *RunArchiveImpl {
	return &RunArchiveImpl{db: db}
}

// EnsureSchema creates the archive tables if they do not exist
func (a *RunArchiveImpl) EnsureSchema(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS be_runs (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			seed BIGINT NOT NULL,
			sample_size_found BOOLEAN NOT NULL,
			sample_size_n INTEGER,
			sample_size_power DOUBLE PRECISION
		);
		CREATE TABLE IF NOT EXISTS be_run_studies (
			run_id TEXT NOT NULL REFERENCES be_runs(id),
			study_name TEXT NOT NULL,
			design TEXT NOT NULL,
			gmr DOUBLE PRECISION NOT NULL,
			ci_lower DOUBLE PRECISION NOT NULL,
			ci_upper DOUBLE PRECISION NOT NULL,
			cv_percent DOUBLE PRECISION NOT NULL,
			bioequivalent BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, study_name)
		);
	`)
	return err
}

// SaveRun stores one run summary with its per-study ABE outcomes
func (a *RunArchiveImpl) SaveRun(ctx context.Context, run *study.RunResult) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n interface{}
	var power interface{}
	if run.Planning.SampleSize.Found {
		n = run.Planning.SampleSize.N
		power = run.Planning.SampleSize.Power
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO be_runs (id, created_at, seed, sample_size_found, sample_size_n, sample_size_power)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.RunID.String(), run.CreatedAt, run.Seed, run.Planning.SampleSize.Found, n, power)
	if err != nil {
		return err
	}

	for _, finding := range run.Studies {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO be_run_studies (run_id, study_name, design, gmr, ci_lower, ci_upper, cv_percent, bioequivalent)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, run.RunID.String(), finding.Name, finding.Design.String(),
			finding.ABE.GMR, finding.ABE.CILower, finding.ABE.CIUpper,
			finding.ABE.CVPercent, finding.ABE.Bioequivalent)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
