// Package report renders the run's human-readable artifacts: a plain-text
// report, two markdown documents, and an HTML version of the findings.
package report

import (
	"fmt"
	"strings"

	"bioeq/domain/study"
)

// Artifact file names written by the pipeline
const (
	TextReportFile = "be_report.txt"
	FindingsFile   = "be_findings.md"
	MethodsFile    = "power_methods.md"
	FindingsHTML   = "be_findings.html"
)

// BuildText renders the plain-text course report
func BuildText(run *study.RunResult) []byte {
	var b strings.Builder

	b.WriteString("BIOEQUIVALENCE STUDY ANALYSIS\n")
	b.WriteString("=============================\n\n")
	fmt.Fprintf(&b, "Run:     %s\n", run.RunID)
	fmt.Fprintf(&b, "Date:    %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Seed:    %d\n\n", run.Seed)

	for _, finding := range run.Studies {
		fmt.Fprintf(&b, "Study: %s (%s design)\n", finding.Name, finding.Design)
		b.WriteString(strings.Repeat("-", 40) + "\n")

		for _, form := range []string{study.FormulationReference, study.FormulationTest} {
			s, ok := finding.Summaries[form]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %-10s n=%d  mean=%.2f  sd=%.2f  cv=%.1f%%  median=%.2f  range=[%.2f, %.2f]\n",
				form, s.N, s.Mean, s.StdDev, s.CVPercent, s.Median, s.Min, s.Max)
		}

		abe := finding.ABE
		fmt.Fprintf(&b, "  GMR %.4f, 90%% CI (%.4f, %.4f), df=%.1f, CV=%.1f%%\n",
			abe.GMR, abe.CILower, abe.CIUpper, abe.DegreesOfFree, abe.CVPercent)
		fmt.Fprintf(&b, "  Conclusion: %s\n\n", conclusion(abe))
	}

	b.WriteString("Power and sample-size planning\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, sc := range run.Planning.Scenarios {
		fmt.Fprintf(&b, "  %-34s power=%.3f (n=%d, cv=%.1f%%, gmr=%.2f, %s)\n",
			sc.Label, sc.Power, sc.Params.N, sc.Params.CVPercent, sc.Params.GMR, sc.Params.Design)
	}
	b.WriteString("\n")
	b.WriteString(sampleSizeLine(run.Planning))
	b.WriteString("\n")

	return []byte(b.String())
}

func conclusion(abe study.ABEResult) string {
	if abe.Bioequivalent {
		return fmt.Sprintf("bioequivalence DEMONSTRATED (CI within %.2f-%.2f)",
			study.BELowerBound, study.BEUpperBound)
	}
	return fmt.Sprintf("bioequivalence NOT demonstrated (CI outside %.2f-%.2f)",
		study.BELowerBound, study.BEUpperBound)
}

func sampleSizeLine(p study.PlanningResult) string {
	spec := p.SearchSpec
	if p.SampleSize.Found {
		return fmt.Sprintf("  Minimal even n for %.0f%% power at cv=%.1f%% (%s): n=%d (estimated power %.3f)\n",
			spec.TargetPower*100, spec.CVPercent, spec.Design, p.SampleSize.N, p.SampleSize.Power)
	}
	return fmt.Sprintf("  No sample size up to n=%d reaches %.0f%% power at cv=%.1f%% (%s)\n",
		spec.MaxN, spec.TargetPower*100, spec.CVPercent, spec.Design)
}
