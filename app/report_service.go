package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"bioeq/adapters/stats/abe"
	"bioeq/adapters/stats/descriptive"
	"bioeq/domain/core"
	"bioeq/domain/study"
	"bioeq/internal"
	"bioeq/internal/errors"
	"bioeq/internal/plot"
	"bioeq/internal/power"
	"bioeq/internal/report"
	"bioeq/ports"
)

// ReportService runs the full course pipeline: load studies, describe them,
// test bioequivalence, estimate power, and emit the report artifacts through
// the configured sink.
type ReportService struct {
	log     *internal.Logger
	source  ports.DatasetSource
	sink    ports.ArtifactSink
	archive ports.RunArchive // nil disables archiving
	seed    int64
	nsim    int
}

// NewReportService wires the pipeline dependencies
func NewReportService(log *internal.Logger, source ports.DatasetSource, sink ports.ArtifactSink, archive ports.RunArchive, seed int64, nsim int) *ReportService {
	return &ReportService{
		log:     log,
		source:  source,
		sink:    sink,
		archive: archive,
		seed:    seed,
		nsim:    nsim,
	}
}

// Run executes one full analysis and returns the computed result values.
// Artifact writing is the only side effect, and it happens after every
// computation has succeeded.
func (s *ReportService) Run(ctx context.Context) (*study.RunResult, error) {
	studies, err := s.source.Studies(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load studies")
	}
	s.log.Info("loaded %d studies", len(studies))

	run := &study.RunResult{
		RunID:     core.NewRunID(),
		CreatedAt: time.Now(),
		Seed:      s.seed,
	}

	var crossoverCV float64
	for _, st := range studies {
		finding, planningCV, err := s.analyzeStudy(st)
		if err != nil {
			return nil, err
		}
		run.Studies = append(run.Studies, finding)

		scenario := study.PlanningScenario{
			Label: fmt.Sprintf("%s as observed", st.Name),
			Params: study.SimulationParams{
				N:         len(st.Subjects()),
				CVPercent: planningCV,
				GMR:       finding.ABE.GMR,
				Design:    st.Design,
				Alpha:     0.05,
				NSim:      s.nsim,
			},
		}
		scenario.Power, err = power.Estimate(scenario.Params, rand.New(rand.NewSource(s.seed)))
		if err != nil {
			return nil, errors.Wrapf(err, "power scenario for %s failed", st.Name)
		}
		s.log.Info("study %s: gmr=%.4f ci=(%.4f, %.4f) be=%t observed-power=%.3f",
			st.Name, finding.ABE.GMR, finding.ABE.CILower, finding.ABE.CIUpper,
			finding.ABE.Bioequivalent, scenario.Power)
		run.Planning.Scenarios = append(run.Planning.Scenarios, scenario)

		if st.Design == study.DesignCrossover {
			crossoverCV = planningCV
		}
	}

	if err := s.planSampleSize(run, crossoverCV); err != nil {
		return nil, err
	}

	if err := s.writeArtifacts(ctx, run, studies, crossoverCV); err != nil {
		return nil, err
	}

	if s.archive != nil {
		if err := s.archive.SaveRun(ctx, run); err != nil {
			return nil, errors.Wrap(err, "failed to archive run")
		}
		s.log.Info("run %s archived", run.RunID)
	}

	return run, nil
}

func (s *ReportService) analyzeStudy(st *study.Study) (study.StudyFinding, float64, error) {
	summaries, err := descriptive.SummarizeStudy(st)
	if err != nil {
		return study.StudyFinding{}, 0, errors.Wrapf(err, "descriptive statistics for %s failed", st.Name)
	}

	abeResult, err := abe.Run(st)
	if err != nil {
		return study.StudyFinding{}, 0, errors.Wrapf(err, "ABE test for %s failed", st.Name)
	}

	planningCV, err := descriptive.PlanningCV(st)
	if err != nil {
		return study.StudyFinding{}, 0, errors.Wrapf(err, "planning CV for %s failed", st.Name)
	}

	return study.StudyFinding{
		Study:     st,
		Name:      st.Name,
		Design:    st.Design,
		Summaries: summaries,
		ABE:       abeResult,
	}, planningCV, nil
}

// planSampleSize searches for the minimal even n reaching 80% power at the
// crossover study's observed CV. Not finding one is reported, not failed.
func (s *ReportService) planSampleSize(run *study.RunResult, crossoverCV float64) error {
	if crossoverCV == 0 {
		s.log.Warn("no crossover study loaded; skipping sample-size search")
		return nil
	}

	spec := study.SampleSizeSpec{
		TargetPower: 0.80,
		CVPercent:   crossoverCV,
		GMR:         1.0,
		Design:      study.DesignCrossover,
		Alpha:       0.05,
		MinN:        8,
		MaxN:        100,
		Step:        2,
		NSim:        s.nsim,
	}
	result, err := power.FindSampleSize(spec, rand.New(rand.NewSource(s.seed)))
	if err != nil {
		return errors.Wrap(err, "sample-size search failed")
	}
	if result.Found {
		s.log.Info("sample-size search: n=%d reaches %.0f%% power at cv=%.1f%%",
			result.N, spec.TargetPower*100, spec.CVPercent)
	} else {
		s.log.Info("sample-size search: no n up to %d reaches %.0f%% power at cv=%.1f%%",
			spec.MaxN, spec.TargetPower*100, spec.CVPercent)
	}

	run.Planning.SearchSpec = spec
	run.Planning.SampleSize = result
	return nil
}

func (s *ReportService) writeArtifacts(ctx context.Context, run *study.RunResult, studies []*study.Study, crossoverCV float64) error {
	findingsMD := report.BuildFindingsMarkdown(run)

	artifacts := map[string][]byte{
		report.TextReportFile: report.BuildText(run),
		report.FindingsFile:   findingsMD,
		report.MethodsFile:    report.BuildMethodsMarkdown(run),
		report.FindingsHTML:   report.RenderHTML(findingsMD),
	}

	for _, st := range studies {
		png, err := plot.EndpointComparison(st)
		if err != nil {
			return errors.Wrapf(err, "comparison plot for %s failed", st.Name)
		}
		artifacts[fmt.Sprintf("%s_comparison.png", st.Name)] = png
	}

	if crossoverCV > 0 {
		curve, err := s.powerCurve(crossoverCV)
		if err != nil {
			return err
		}
		artifacts["power_curve.png"] = curve
	}

	for name, data := range artifacts {
		if err := s.sink.Write(ctx, name, data); err != nil {
			return errors.Wrapf(err, "failed to write artifact %s", name)
		}
		s.log.Debug("wrote artifact %s (%d bytes)", name, len(data))
	}
	return nil
}

func (s *ReportService) powerCurve(cvPct float64) ([]byte, error) {
	rng := rand.New(rand.NewSource(s.seed))
	var points []plot.CurvePoint
	for n := 8; n <= 100; n += 4 {
		p, err := power.Estimate(study.SimulationParams{
			N: n, CVPercent: cvPct, GMR: 1.0, Design: study.DesignCrossover,
			Alpha: 0.05, NSim: s.nsim,
		}, rng)
		if err != nil {
			return nil, errors.Wrap(err, "power curve point failed")
		}
		points = append(points, plot.CurvePoint{N: n, Power: p})
	}
	title := fmt.Sprintf("Crossover power at cv=%.1f%% (gmr 1.0)", cvPct)
	return plot.PowerCurve(title, points, 0.80)
}
