// Package descriptive computes per-formulation endpoint summaries and the
// planning CV% values the power simulation consumes.
package descriptive

import (
	"math"

	"bioeq/domain/core"
	"bioeq/domain/study"

	"github.com/montanaflynn/stats"
)

// Summarize computes descriptive statistics for one sample of endpoint values
func Summarize(data []float64) (study.SummaryStats, error) {
	if len(data) < 2 {
		return study.SummaryStats{}, core.NewInsufficientDataError("descriptive summary", 2, len(data))
	}

	mean, _ := stats.Mean(data)
	sd, _ := stats.StandardDeviationSample(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	gmean, _ := stats.GeometricMean(data)

	cv := 0.0
	if mean != 0 {
		cv = sd / mean * 100
	}

	return study.SummaryStats{
		N:         len(data),
		Mean:      mean,
		StdDev:    sd,
		CVPercent: cv,
		Median:    median,
		Min:       min,
		Max:       max,
		GeoMean:   gmean,
	}, nil
}

// SummarizeStudy returns formulation-keyed summaries for a loaded study
func SummarizeStudy(st *study.Study) (map[string]study.SummaryStats, error) {
	test, ref := st.ByFormulation()

	testStats, err := Summarize(test)
	if err != nil {
		return nil, err
	}
	refStats, err := Summarize(ref)
	if err != nil {
		return nil, err
	}

	return map[string]study.SummaryStats{
		study.FormulationTest:      testStats,
		study.FormulationReference: refStats,
	}, nil
}

// PlanningCV derives the single scalar CV% the power simulation plans with.
// Parallel designs use the pooled between-subject log-scale CV; crossover
// designs use the within-subject CV recovered from period differences.
func PlanningCV(st *study.Study) (float64, error) {
	switch st.Design {
	case study.DesignCrossover:
		return withinSubjectCV(st)
	default:
		return pooledLogCV(st)
	}
}

func pooledLogCV(st *study.Study) (float64, error) {
	test, ref := st.ByFormulation()
	if len(test) < 2 || len(ref) < 2 {
		return 0, core.NewInsufficientDataError("pooled CV", 2, minInt(len(test), len(ref)))
	}

	vt, err := stats.SampleVariance(logValues(test))
	if err != nil {
		return 0, err
	}
	vr, err := stats.SampleVariance(logValues(ref))
	if err != nil {
		return 0, err
	}

	pooled := (vt + vr) / 2
	return math.Sqrt(math.Exp(pooled)-1) * 100, nil
}

func withinSubjectCV(st *study.Study) (float64, error) {
	diffs, err := PeriodLogDifferences(st)
	if err != nil {
		return 0, err
	}
	vd, err := stats.SampleVariance(diffs)
	if err != nil {
		return 0, err
	}
	// var(test - reference) = 2 * within-subject log variance
	return math.Sqrt(math.Exp(vd/2)-1) * 100, nil
}

// PeriodLogDifferences returns ln(test) - ln(reference) per complete subject
// of a crossover study. Subjects missing either period are skipped.
func PeriodLogDifferences(st *study.Study) ([]float64, error) {
	if st.Design != study.DesignCrossover {
		return nil, core.NewInvalidParameterError("design", "period differences require a crossover study")
	}

	type pair struct {
		test, ref  float64
		hasT, hasR bool
	}
	pairs := make(map[string]*pair)
	order := st.Subjects()
	for _, obs := range st.Observations {
		p := pairs[obs.Subject]
		if p == nil {
			p = &pair{}
			pairs[obs.Subject] = p
		}
		switch obs.Formulation {
		case study.FormulationTest:
			p.test, p.hasT = obs.Endpoint, true
		case study.FormulationReference:
			p.ref, p.hasR = obs.Endpoint, true
		}
	}

	var diffs []float64
	for _, subj := range order {
		p := pairs[subj]
		if p != nil && p.hasT && p.hasR {
			diffs = append(diffs, math.Log(p.test)-math.Log(p.ref))
		}
	}
	if len(diffs) < 3 {
		return nil, core.NewInsufficientDataError("period differences", 3, len(diffs))
	}
	return diffs, nil
}

func logValues(data []float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = math.Log(v)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
