// Package ports defines the boundary interfaces the pipeline writes through.
package ports

import (
	"context"

	"bioeq/domain/study"
)

// ArtifactSink persists named run artifacts (reports, figures). The pipeline
// computes everything first; persistence is the only side effect.
type ArtifactSink interface {
	Write(ctx context.Context, name string, data []byte) error
}

// RunArchive stores run summaries for later comparison. A nil archive means
// archiving is disabled.
type RunArchive interface {
	SaveRun(ctx context.Context, run *study.RunResult) error
}

// DatasetSource supplies the studies a run analyzes
type DatasetSource interface {
	Studies(ctx context.Context) ([]*study.Study, error)
}
