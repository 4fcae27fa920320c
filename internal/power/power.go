// Package power estimates the probability that a bioequivalence study
// demonstrates average bioequivalence, via Monte-Carlo simulation of the
// 90% confidence interval on the log geometric-mean ratio.
package power

import (
	"math"
	"math/rand"

	"bioeq/domain/study"

	"gonum.org/v1/gonum/stat/distuv"
)

// Estimate runs the Monte-Carlo containment simulation for one parameter set.
// The random source is injected so results are reproducible. The returned
// value is the fraction of simulated intervals lying entirely within the
// [0.80, 1.25] acceptance bounds.
func Estimate(params study.SimulationParams, rng *rand.Rand) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}

	se := planningSE(params.N, params.CVPercent, params.Design)
	crit := criticalValue(params.N, params.Alpha)

	lo := math.Log(study.BELowerBound)
	hi := math.Log(study.BEUpperBound)
	mu := math.Log(params.GMR)

	successes := 0
	for i := 0; i < params.NSim; i++ {
		est := mu + se*rng.NormFloat64()
		if est-crit*se >= lo && est+crit*se <= hi {
			successes++
		}
	}
	return float64(successes) / float64(params.NSim), nil
}

// planningSE is the standard error of the log ratio under the planning model.
// Crossover halves the variance multiplier because each subject is compared
// against itself.
func planningSE(n int, cvPct float64, design study.Design) float64 {
	logVar := math.Log(math.Pow(cvPct/100, 2) + 1)
	mult := 4.0
	if design == study.DesignCrossover {
		mult = 2.0
	}
	return math.Sqrt(mult * logVar / float64(n))
}

// criticalValue is the one-sided Student-t quantile used for the two
// one-sided tests interval. The degrees-of-freedom floor of 1 mirrors the
// original planning script: tiny samples get a very wide interval rather
// than a rejection.
func criticalValue(n int, alpha float64) float64 {
	df := n - 2
	if df < 1 {
		df = 1
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return t.Quantile(1 - alpha)
}
