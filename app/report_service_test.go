package app

import (
	"bytes"
	"context"
	"testing"

	"bioeq/adapters/artifact"
	"bioeq/adapters/dataset"
	"bioeq/internal"
	"bioeq/internal/report"
)

func newTestService(sink *artifact.MemorySink) *ReportService {
	log := internal.NewLogger(internal.LogLevelError)
	return NewReportService(log, dataset.NewCourseSource(), sink, nil, 42, 2000)
}

func TestReportService_Run(t *testing.T) {
	sink := artifact.NewMemorySink()
	svc := newTestService(sink)

	run, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}

	if run.RunID.String() == "" {
		t.Error("run should carry an ID")
	}
	if len(run.Studies) != 2 {
		t.Fatalf("expected 2 studies, got %d", len(run.Studies))
	}

	parallel := run.Studies[0]
	crossover := run.Studies[1]
	if !parallel.ABE.Bioequivalent {
		t.Errorf("parallel study should demonstrate BE, CI (%f, %f)",
			parallel.ABE.CILower, parallel.ABE.CIUpper)
	}
	if crossover.ABE.Bioequivalent {
		t.Errorf("crossover study should fail BE, CI (%f, %f)",
			crossover.ABE.CILower, crossover.ABE.CIUpper)
	}

	if !run.Planning.SampleSize.Found {
		t.Error("sample-size search should find an n for the observed crossover CV")
	} else if run.Planning.SampleSize.N < 30 || run.Planning.SampleSize.N > 70 {
		t.Errorf("found n=%d, expected a moderate size for cv around 38%%", run.Planning.SampleSize.N)
	}
	if len(run.Planning.Scenarios) != 2 {
		t.Errorf("expected one planning scenario per study, got %d", len(run.Planning.Scenarios))
	}
}

func TestReportService_WritesAllArtifacts(t *testing.T) {
	sink := artifact.NewMemorySink()
	svc := newTestService(sink)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}

	expected := []string{
		report.TextReportFile,
		report.FindingsFile,
		report.MethodsFile,
		report.FindingsHTML,
		dataset.ParallelStudyName + "_comparison.png",
		dataset.CrossoverStudyName + "_comparison.png",
		"power_curve.png",
	}
	for _, name := range expected {
		data, ok := sink.Get(name)
		if !ok {
			t.Errorf("missing artifact %s", name)
			continue
		}
		if len(data) == 0 {
			t.Errorf("artifact %s is empty", name)
		}
	}

	text, _ := sink.Get(report.TextReportFile)
	if !bytes.Contains(text, []byte("DEMONSTRATED")) {
		t.Error("text report should state the parallel BE conclusion")
	}
	if !bytes.Contains(text, []byte("NOT demonstrated")) {
		t.Error("text report should state the crossover BE conclusion")
	}

	html, _ := sink.Get(report.FindingsHTML)
	if !bytes.Contains(html, []byte("<html")) {
		t.Error("HTML artifact should be a complete page")
	}
}

func TestReportService_Reproducible(t *testing.T) {
	first, err := newTestService(artifact.NewMemorySink()).Run(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := newTestService(artifact.NewMemorySink()).Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for i := range first.Planning.Scenarios {
		if first.Planning.Scenarios[i].Power != second.Planning.Scenarios[i].Power {
			t.Errorf("scenario %d power differs across seeded runs: %f vs %f",
				i, first.Planning.Scenarios[i].Power, second.Planning.Scenarios[i].Power)
		}
	}
	if first.Planning.SampleSize != second.Planning.SampleSize {
		t.Errorf("sample-size result differs across seeded runs: %+v vs %+v",
			first.Planning.SampleSize, second.Planning.SampleSize)
	}
}
