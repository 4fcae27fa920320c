package power

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"bioeq/domain/core"
	"bioeq/domain/study"
)

func newRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func mustEstimate(t *testing.T, params study.SimulationParams, seed int64) float64 {
	t.Helper()
	p, err := Estimate(params, newRng(seed))
	if err != nil {
		t.Fatalf("Estimate(%+v) failed: %v", params, err)
	}
	return p
}

func TestEstimate_ReturnsFraction(t *testing.T) {
	cases := []study.SimulationParams{
		{N: 8, CVPercent: 20, GMR: 1.0, Design: study.DesignCrossover, Alpha: 0.05, NSim: 2000},
		{N: 24, CVPercent: 35, GMR: 1.05, Design: study.DesignParallel, Alpha: 0.05, NSim: 2000},
		{N: 3, CVPercent: 80, GMR: 0.9, Design: study.DesignCrossover, Alpha: 0.10, NSim: 500},
		{N: 1, CVPercent: 10, GMR: 1.0, Design: study.DesignParallel, Alpha: 0.05, NSim: 100},
	}
	for _, params := range cases {
		p := mustEstimate(t, params, 1)
		if p < 0 || p > 1 {
			t.Errorf("Estimate(%+v) = %f, want value in [0,1]", params, p)
		}
	}
}

func TestEstimate_Reproducible(t *testing.T) {
	params := study.SimulationParams{
		N: 20, CVPercent: 25, GMR: 1.0, Design: study.DesignCrossover, Alpha: 0.05, NSim: 5000,
	}
	first := mustEstimate(t, params, 99)
	second := mustEstimate(t, params, 99)
	if first != second {
		t.Errorf("same seed gave different estimates: %f vs %f", first, second)
	}

	other := mustEstimate(t, params, 100)
	_ = other // a different seed may coincide; only identity under equal seeds is guaranteed
}

func TestEstimate_MonotoneInSampleSize(t *testing.T) {
	ladder := []int{8, 20, 50, 100}
	prev := -1.0
	for _, n := range ladder {
		p := mustEstimate(t, study.SimulationParams{
			N: n, CVPercent: 25, GMR: 1.0, Design: study.DesignCrossover, Alpha: 0.05, NSim: 20000,
		}, 7)
		// Monte-Carlo estimate: allow a small tolerance instead of exact ordering.
		if p < prev-0.01 {
			t.Errorf("power decreased along n ladder: n=%d gave %f, previous %f", n, p, prev)
		}
		prev = p
	}
	if prev < 0.99 {
		t.Errorf("power at n=100, cv=25 crossover = %f, want near 1", prev)
	}
}

func TestEstimate_CrossoverBeatsParallel(t *testing.T) {
	base := study.SimulationParams{N: 24, CVPercent: 30, GMR: 1.0, Alpha: 0.05, NSim: 20000}

	xo := base
	xo.Design = study.DesignCrossover
	par := base
	par.Design = study.DesignParallel

	pXO := mustEstimate(t, xo, 3)
	pPar := mustEstimate(t, par, 3)
	if pXO < pPar {
		t.Errorf("crossover power %f < parallel power %f at identical parameters", pXO, pPar)
	}
}

func TestEstimate_ZeroCVIsCertain(t *testing.T) {
	for _, n := range []int{4, 8, 16} {
		p := mustEstimate(t, study.SimulationParams{
			N: n, CVPercent: 0, GMR: 1.0, Design: study.DesignCrossover, Alpha: 0.05, NSim: 1000,
		}, 1)
		if p != 1.0 {
			t.Errorf("cv=0, gmr=1, n=%d: power = %f, want 1.0 (point interval at zero)", n, p)
		}
	}
}

func TestEstimate_ParallelStudyScenario(t *testing.T) {
	// Low-CV, in-range GMR: the parallel study's demonstrated-BE finding.
	p := mustEstimate(t, study.SimulationParams{
		N: 60, CVPercent: 6, GMR: 1.09, Design: study.DesignParallel, Alpha: 0.05, NSim: 20000,
	}, 11)
	if p < 0.99 {
		t.Errorf("parallel scenario power = %f, want near 1", p)
	}
}

func TestEstimate_CrossoverStudyScenario(t *testing.T) {
	// High-CV, small-n: the crossover study's failed-BE finding. Here the
	// interval half-width exceeds the acceptance band, so containment is
	// impossible.
	p := mustEstimate(t, study.SimulationParams{
		N: 18, CVPercent: 51, GMR: 0.92, Design: study.DesignCrossover, Alpha: 0.05, NSim: 20000,
	}, 11)
	if p > 0.01 {
		t.Errorf("crossover scenario power = %f, want near 0", p)
	}
}

func TestEstimate_RejectsInvalidParameters(t *testing.T) {
	valid := study.SimulationParams{
		N: 12, CVPercent: 20, GMR: 1.0, Design: study.DesignCrossover, Alpha: 0.05, NSim: 100,
	}
	mutations := []struct {
		name   string
		mutate func(p *study.SimulationParams)
	}{
		{"zero n", func(p *study.SimulationParams) { p.N = 0 }},
		{"negative n", func(p *study.SimulationParams) { p.N = -4 }},
		{"negative cv", func(p *study.SimulationParams) { p.CVPercent = -1 }},
		{"zero gmr", func(p *study.SimulationParams) { p.GMR = 0 }},
		{"negative gmr", func(p *study.SimulationParams) { p.GMR = -0.5 }},
		{"alpha zero", func(p *study.SimulationParams) { p.Alpha = 0 }},
		{"alpha one", func(p *study.SimulationParams) { p.Alpha = 1 }},
		{"zero nsim", func(p *study.SimulationParams) { p.NSim = 0 }},
		{"bad design", func(p *study.SimulationParams) { p.Design = "replicate" }},
	}
	for _, tc := range mutations {
		params := valid
		tc.mutate(&params)
		_, err := Estimate(params, newRng(1))
		if err == nil {
			t.Errorf("%s: expected validation error, got none", tc.name)
			continue
		}
		if !errors.Is(err, core.ErrInvalidParameter) {
			t.Errorf("%s: error %v is not an invalid-parameter error", tc.name, err)
		}
	}
}

func TestEstimate_TinySampleUsesFloorDF(t *testing.T) {
	// n <= 2 keeps df floored at 1: a very conservative interval, not an error.
	for _, n := range []int{1, 2, 3} {
		p := mustEstimate(t, study.SimulationParams{
			N: n, CVPercent: 15, GMR: 1.0, Design: study.DesignCrossover, Alpha: 0.05, NSim: 500,
		}, 5)
		if p < 0 || p > 1 {
			t.Errorf("n=%d: power %f outside [0,1]", n, p)
		}
	}
}

func TestFindSampleSize_FindsModerateCV(t *testing.T) {
	res, err := FindSampleSize(study.SampleSizeSpec{
		TargetPower: 0.80, CVPercent: 30, GMR: 1.0, Design: study.DesignCrossover,
		Alpha: 0.05, MinN: 8, MaxN: 100, Step: 2, NSim: 10000,
	}, newRng(7))
	if err != nil {
		t.Fatalf("FindSampleSize failed: %v", err)
	}
	if !res.Found {
		t.Fatal("expected a sample size for cv=30 crossover within [8,100]")
	}
	if res.N < 28 || res.N > 44 {
		t.Errorf("found n=%d, expected roughly 30-40 for cv=30 crossover at 80%% power", res.N)
	}
	if res.Power < 0.80 {
		t.Errorf("reported power %f below target 0.80", res.Power)
	}
	if res.N%2 != 0 {
		t.Errorf("found n=%d is odd; search must stay on even sizes", res.N)
	}
}

func TestFindSampleSize_UnreachableTarget(t *testing.T) {
	res, err := FindSampleSize(study.SampleSizeSpec{
		TargetPower: 0.99, CVPercent: 150, GMR: 1.0, Design: study.DesignCrossover,
		Alpha: 0.05, MinN: 8, MaxN: 100, Step: 2, NSim: 2000,
	}, newRng(7))
	if err != nil {
		t.Fatalf("FindSampleSize failed: %v", err)
	}
	if res.Found {
		t.Errorf("cv=150 at 99%% power should exhaust the range, got n=%d", res.N)
	}
}

func TestFindSampleSize_RoundsMinUpToEven(t *testing.T) {
	res, err := FindSampleSize(study.SampleSizeSpec{
		TargetPower: 0.01, CVPercent: 10, GMR: 1.0, Design: study.DesignCrossover,
		Alpha: 0.05, MinN: 7, MaxN: 20, Step: 2, NSim: 500,
	}, newRng(1))
	if err != nil {
		t.Fatalf("FindSampleSize failed: %v", err)
	}
	if !res.Found {
		t.Fatal("trivial target should be met immediately")
	}
	if res.N != 8 {
		t.Errorf("odd minimum 7 should round up to 8, got %d", res.N)
	}
}

func TestFindSampleSize_RejectsOddStep(t *testing.T) {
	_, err := FindSampleSize(study.SampleSizeSpec{
		TargetPower: 0.8, CVPercent: 20, GMR: 1.0, Design: study.DesignCrossover,
		Alpha: 0.05, MinN: 8, MaxN: 20, Step: 3, NSim: 100,
	}, newRng(1))
	if err == nil {
		t.Fatal("odd step must be rejected")
	}
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("error %v is not an invalid-parameter error", err)
	}
}

func TestEstimateConcurrent_Deterministic(t *testing.T) {
	params := study.SimulationParams{
		N: 24, CVPercent: 25, GMR: 1.0, Design: study.DesignCrossover, Alpha: 0.05, NSim: 20000,
	}
	ctx := context.Background()

	first, err := EstimateConcurrent(ctx, params, 42, 4)
	if err != nil {
		t.Fatalf("EstimateConcurrent failed: %v", err)
	}
	second, err := EstimateConcurrent(ctx, params, 42, 4)
	if err != nil {
		t.Fatalf("EstimateConcurrent failed: %v", err)
	}
	if first != second {
		t.Errorf("fixed seed and worker count gave %f then %f", first, second)
	}

	serial := mustEstimate(t, params, 42)
	if diff := first - serial; diff > 0.05 || diff < -0.05 {
		t.Errorf("concurrent estimate %f far from serial estimate %f", first, serial)
	}
}

func TestEstimateConcurrent_MoreWorkersThanDraws(t *testing.T) {
	params := study.SimulationParams{
		N: 12, CVPercent: 0, GMR: 1.0, Design: study.DesignCrossover, Alpha: 0.05, NSim: 3,
	}
	p, err := EstimateConcurrent(context.Background(), params, 1, 16)
	if err != nil {
		t.Fatalf("EstimateConcurrent failed: %v", err)
	}
	if p != 1.0 {
		t.Errorf("cv=0 with 3 draws should be certain, got %f", p)
	}
}
