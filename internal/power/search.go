package power

import (
	"math/rand"

	"bioeq/domain/study"
)

// FindSampleSize scans even sample sizes from the configured minimum to the
// maximum and returns the first n whose estimated power meets the target.
// Exhausting the range is not an error: the result carries Found=false and
// the caller must handle it explicitly.
func FindSampleSize(spec study.SampleSizeSpec, rng *rand.Rand) (study.SampleSizeResult, error) {
	if err := spec.Validate(); err != nil {
		return study.SampleSizeResult{}, err
	}

	// Round the minimum up to even: one dose per arm pair.
	n := spec.MinN
	if n%2 != 0 {
		n++
	}

	for ; n <= spec.MaxN; n += spec.Step {
		p, err := Estimate(study.SimulationParams{
			N:         n,
			CVPercent: spec.CVPercent,
			GMR:       spec.GMR,
			Design:    spec.Design,
			Alpha:     spec.Alpha,
			NSim:      spec.NSim,
		}, rng)
		if err != nil {
			return study.SampleSizeResult{}, err
		}
		if p >= spec.TargetPower {
			return study.SampleSizeResult{Found: true, N: n, Power: p}, nil
		}
	}

	return study.SampleSizeResult{Found: false}, nil
}
