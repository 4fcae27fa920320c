package study

import (
	"fmt"
	"strings"
	"time"

	"bioeq/domain/core"
)

// Design is the study design: it determines the standard-error model for both
// the bioequivalence test and the power simulation.
type Design string

const (
	DesignParallel  Design = "parallel"
	DesignCrossover Design = "crossover"
)

// ParseDesign normalizes a user-supplied design name
func ParseDesign(s string) (Design, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parallel":
		return DesignParallel, nil
	case "crossover", "cross-over", "2x2":
		return DesignCrossover, nil
	default:
		return "", core.NewInvalidParameterError("design", fmt.Sprintf("must be parallel or crossover, got %q", s))
	}
}

func (d Design) String() string { return string(d) }

// Formulation labels are normalized to these two values during ingestion
const (
	FormulationTest      = "Test"
	FormulationReference = "Reference"
)

// Observation is one endpoint measurement for one subject in one period.
// Period and Sequence are zero-valued for parallel designs.
type Observation struct {
	Subject     string
	Formulation string
	Sequence    string
	Period      int
	Endpoint    float64
}

// Study is a loaded dataset ready for analysis
type Study struct {
	Name         string
	Design       Design
	EndpointName string
	Observations []Observation
}

// ByFormulation splits endpoint values into test and reference slices
func (s *Study) ByFormulation() (test, reference []float64) {
	for _, obs := range s.Observations {
		switch obs.Formulation {
		case FormulationTest:
			test = append(test, obs.Endpoint)
		case FormulationReference:
			reference = append(reference, obs.Endpoint)
		}
	}
	return test, reference
}

// Subjects returns the distinct subject identifiers in first-seen order
func (s *Study) Subjects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, obs := range s.Observations {
		if !seen[obs.Subject] {
			seen[obs.Subject] = true
			out = append(out, obs.Subject)
		}
	}
	return out
}

// SummaryStats holds the descriptive statistics for one formulation arm
type SummaryStats struct {
	N         int     `json:"n"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	CVPercent float64 `json:"cv_percent"`
	Median    float64 `json:"median"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	GeoMean   float64 `json:"geo_mean"`
}

// ABEResult is the outcome of an average-bioequivalence test: the 90% CI on
// the test/reference geometric mean ratio against the [0.80, 1.25] bounds.
type ABEResult struct {
	GMR           float64 `json:"gmr"`
	CILower       float64 `json:"ci_lower"`
	CIUpper       float64 `json:"ci_upper"`
	DegreesOfFree float64 `json:"degrees_of_freedom"`
	CVPercent     float64 `json:"cv_percent"`
	Alpha         float64 `json:"alpha"`
	Bioequivalent bool    `json:"bioequivalent"`
}

// Regulatory acceptance bounds for average bioequivalence
const (
	BELowerBound = 0.80
	BEUpperBound = 1.25
)

// SimulationParams are the inputs to one Monte-Carlo power estimate
type SimulationParams struct {
	N         int     `json:"n"`
	CVPercent float64 `json:"cv_percent"`
	GMR       float64 `json:"gmr"`
	Design    Design  `json:"design"`
	Alpha     float64 `json:"alpha"`
	NSim      int     `json:"nsim"`
}

// WithDefaults fills zero-valued optional fields (gmr 1.0, alpha 0.05,
// nsim 10000). Required fields are left untouched so that validation can
// reject them.
func (p SimulationParams) WithDefaults() SimulationParams {
	if p.GMR == 0 {
		p.GMR = 1.0
	}
	if p.Alpha == 0 {
		p.Alpha = 0.05
	}
	if p.NSim == 0 {
		p.NSim = 10000
	}
	return p
}

// Validate rejects invalid inputs before any simulation work
func (p SimulationParams) Validate() error {
	if p.N < 1 {
		return core.NewInvalidParameterError("n", fmt.Sprintf("must be >= 1, got %d", p.N))
	}
	if p.CVPercent < 0 {
		return core.NewInvalidParameterError("cv_percent", fmt.Sprintf("must be >= 0, got %g", p.CVPercent))
	}
	if p.GMR <= 0 {
		return core.NewInvalidParameterError("gmr", fmt.Sprintf("must be > 0, got %g", p.GMR))
	}
	if p.Design != DesignParallel && p.Design != DesignCrossover {
		return core.NewInvalidParameterError("design", fmt.Sprintf("must be parallel or crossover, got %q", p.Design))
	}
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return core.NewInvalidParameterError("alpha", fmt.Sprintf("must be in (0,1), got %g", p.Alpha))
	}
	if p.NSim < 1 {
		return core.NewInvalidParameterError("nsim", fmt.Sprintf("must be >= 1, got %d", p.NSim))
	}
	return nil
}

// SampleSizeSpec bounds a linear search for the smallest even n that reaches
// the target power.
type SampleSizeSpec struct {
	TargetPower float64 `json:"target_power"`
	CVPercent   float64 `json:"cv_percent"`
	GMR         float64 `json:"gmr"`
	Design      Design  `json:"design"`
	Alpha       float64 `json:"alpha"`
	MinN        int     `json:"min_n"`
	MaxN        int     `json:"max_n"`
	Step        int     `json:"step"`
	NSim        int     `json:"nsim"`
}

// WithDefaults fills zero-valued optional fields (gmr 1.0, alpha 0.05,
// nsim 10000, step 2, range 8..100).
func (s SampleSizeSpec) WithDefaults() SampleSizeSpec {
	if s.GMR == 0 {
		s.GMR = 1.0
	}
	if s.Alpha == 0 {
		s.Alpha = 0.05
	}
	if s.NSim == 0 {
		s.NSim = 10000
	}
	if s.Step == 0 {
		s.Step = 2
	}
	if s.MinN == 0 {
		s.MinN = 8
	}
	if s.MaxN == 0 {
		s.MaxN = 100
	}
	return s
}

// Validate rejects invalid search bounds before scanning
func (s SampleSizeSpec) Validate() error {
	if s.TargetPower <= 0 || s.TargetPower > 1 {
		return core.NewInvalidParameterError("target_power", fmt.Sprintf("must be in (0,1], got %g", s.TargetPower))
	}
	if s.CVPercent < 0 {
		return core.NewInvalidParameterError("cv_percent", fmt.Sprintf("must be >= 0, got %g", s.CVPercent))
	}
	if s.GMR <= 0 {
		return core.NewInvalidParameterError("gmr", fmt.Sprintf("must be > 0, got %g", s.GMR))
	}
	if s.Design != DesignParallel && s.Design != DesignCrossover {
		return core.NewInvalidParameterError("design", fmt.Sprintf("must be parallel or crossover, got %q", s.Design))
	}
	if s.Alpha <= 0 || s.Alpha >= 1 {
		return core.NewInvalidParameterError("alpha", fmt.Sprintf("must be in (0,1), got %g", s.Alpha))
	}
	if s.MinN < 1 {
		return core.NewInvalidParameterError("min_n", fmt.Sprintf("must be >= 1, got %d", s.MinN))
	}
	if s.MaxN < s.MinN {
		return core.NewInvalidParameterError("max_n", fmt.Sprintf("must be >= min_n %d, got %d", s.MinN, s.MaxN))
	}
	if s.Step < 2 || s.Step%2 != 0 {
		return core.NewInvalidParameterError("step", fmt.Sprintf("must be a positive even number, got %d", s.Step))
	}
	if s.NSim < 1 {
		return core.NewInvalidParameterError("nsim", fmt.Sprintf("must be >= 1, got %d", s.NSim))
	}
	return nil
}

// SampleSizeResult is the outcome of a sample-size search. Found=false is a
// valid negative result, not an error: no n in the searched range reached the
// target power.
type SampleSizeResult struct {
	Found bool    `json:"found"`
	N     int     `json:"n,omitempty"`
	Power float64 `json:"power,omitempty"`
}

// StudyFinding bundles everything the report needs for one study
type StudyFinding struct {
	Study     *Study                  `json:"-"`
	Name      string                  `json:"name"`
	Design    Design                  `json:"design"`
	Summaries map[string]SummaryStats `json:"summaries"`
	ABE       ABEResult               `json:"abe"`
}

// PlanningResult is the power/sample-size section of a run
type PlanningResult struct {
	Scenarios  []PlanningScenario `json:"scenarios"`
	SampleSize SampleSizeResult   `json:"sample_size"`
	SearchSpec SampleSizeSpec     `json:"search_spec"`
}

// PlanningScenario records one estimated power value with its inputs
type PlanningScenario struct {
	Label  string           `json:"label"`
	Params SimulationParams `json:"params"`
	Power  float64          `json:"power"`
}

// RunResult is the full outcome of one pipeline execution
type RunResult struct {
	RunID     core.RunID     `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Seed      int64          `json:"seed"`
	Studies   []StudyFinding `json:"studies"`
	Planning  PlanningResult `json:"planning"`
}
