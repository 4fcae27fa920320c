package power

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"

	"bioeq/domain/study"

	"golang.org/x/sync/errgroup"
)

// EstimateConcurrent partitions the Monte-Carlo draws across workers, each
// seeded deterministically from the base seed, and sums successes. The result
// is reproducible for a fixed (seed, workers) pair; each draw is independent,
// so no ordering beyond the final count matters.
func EstimateConcurrent(ctx context.Context, params study.SimulationParams, seed int64, workers int) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if workers < 1 {
		workers = 1
	}
	if workers > params.NSim {
		workers = params.NSim
	}

	se := planningSE(params.N, params.CVPercent, params.Design)
	crit := criticalValue(params.N, params.Alpha)
	lo := math.Log(study.BELowerBound)
	hi := math.Log(study.BEUpperBound)
	mu := math.Log(params.GMR)

	perWorker := params.NSim / workers
	remainder := params.NSim % workers

	var successes int64
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		draws := perWorker
		if w < remainder {
			draws++
		}
		workerSeed := seed + int64(w)
		g.Go(func() error {
			rng := rand.New(rand.NewSource(workerSeed))
			local := 0
			for i := 0; i < draws; i++ {
				est := mu + se*rng.NormFloat64()
				if est-crit*se >= lo && est+crit*se <= hi {
					local++
				}
			}
			atomic.AddInt64(&successes, int64(local))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return float64(successes) / float64(params.NSim), nil
}
