// Package abe runs the standard average-bioequivalence test: a 90%
// confidence interval on the test/reference geometric mean ratio, accepted
// when the interval lies within [0.80, 1.25].
package abe

import (
	"math"

	"bioeq/adapters/stats/descriptive"
	"bioeq/domain/core"
	"bioeq/domain/study"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the one-sided level of the two one-sided tests procedure,
// giving the conventional 90% interval.
const DefaultAlpha = 0.05

// Run tests a loaded study for average bioequivalence at the default level
func Run(st *study.Study) (study.ABEResult, error) {
	return RunAt(st, DefaultAlpha)
}

// RunAt tests a loaded study at a caller-chosen one-sided level
func RunAt(st *study.Study, alpha float64) (study.ABEResult, error) {
	if alpha <= 0 || alpha >= 1 {
		return study.ABEResult{}, core.NewInvalidParameterError("alpha", "must be in (0,1)")
	}

	switch st.Design {
	case study.DesignCrossover:
		return crossoverABE(st, alpha)
	case study.DesignParallel:
		return parallelABE(st, alpha)
	default:
		return study.ABEResult{}, core.NewInvalidParameterError("design", "unknown design "+st.Design.String())
	}
}

// parallelABE compares log endpoints between independent arms with Welch's
// unequal-variance interval and Satterthwaite degrees of freedom.
func parallelABE(st *study.Study, alpha float64) (study.ABEResult, error) {
	test, ref := st.ByFormulation()
	if len(test) < 3 || len(ref) < 3 {
		return study.ABEResult{}, core.NewInsufficientDataError("parallel ABE", 3, minInt(len(test), len(ref)))
	}

	lt := logValues(test)
	lr := logValues(ref)

	mt, _ := stats.Mean(lt)
	mr, _ := stats.Mean(lr)
	vt, _ := stats.SampleVariance(lt)
	vr, _ := stats.SampleVariance(lr)

	nt := float64(len(lt))
	nr := float64(len(lr))

	se := math.Sqrt(vt/nt + vr/nr)
	df := satterthwaiteDF(vt, vr, nt, nr)
	cv := math.Sqrt(math.Exp((vt+vr)/2)-1) * 100

	return intervalResult(mt-mr, se, df, cv, alpha), nil
}

// crossoverABE uses within-subject period differences: each subject is its
// own control, so the interval comes from the paired log differences. The
// residual degrees of freedom follow the 2x2 crossover ANOVA, n-2.
func crossoverABE(st *study.Study, alpha float64) (study.ABEResult, error) {
	diffs, err := descriptive.PeriodLogDifferences(st)
	if err != nil {
		return study.ABEResult{}, err
	}

	md, _ := stats.Mean(diffs)
	vd, _ := stats.SampleVariance(diffs)

	n := float64(len(diffs))
	se := math.Sqrt(vd / n)
	df := n - 2
	if df < 1 {
		df = 1
	}
	cv := math.Sqrt(math.Exp(vd/2)-1) * 100

	return intervalResult(md, se, df, cv, alpha), nil
}

func intervalResult(logDiff, se, df, cv, alpha float64) study.ABEResult {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	crit := t.Quantile(1 - alpha)

	lower := math.Exp(logDiff - crit*se)
	upper := math.Exp(logDiff + crit*se)

	return study.ABEResult{
		GMR:           math.Exp(logDiff),
		CILower:       lower,
		CIUpper:       upper,
		DegreesOfFree: df,
		CVPercent:     cv,
		Alpha:         alpha,
		Bioequivalent: lower >= study.BELowerBound && upper <= study.BEUpperBound,
	}
}

func satterthwaiteDF(vt, vr, nt, nr float64) float64 {
	num := math.Pow(vt/nt+vr/nr, 2)
	den := math.Pow(vt/nt, 2)/(nt-1) + math.Pow(vr/nr, 2)/(nr-1)
	if den == 0 {
		return 1
	}
	df := num / den
	if df < 1 {
		df = 1
	}
	return df
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
