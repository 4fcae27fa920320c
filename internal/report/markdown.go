package report

import (
	"fmt"
	"strings"

	"bioeq/domain/study"
)

// BuildFindingsMarkdown renders the study-findings write-up
func BuildFindingsMarkdown(run *study.RunResult) []byte {
	var b strings.Builder

	b.WriteString("# Bioequivalence Study Findings\n\n")
	fmt.Fprintf(&b, "Run `%s`, %s.\n\n", run.RunID, run.CreatedAt.Format("2006-01-02"))

	for _, finding := range run.Studies {
		fmt.Fprintf(&b, "## %s (%s design)\n\n", finding.Name, finding.Design)

		b.WriteString("| Formulation | n | Mean | SD | CV% | Median |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, form := range []string{study.FormulationReference, study.FormulationTest} {
			s, ok := finding.Summaries[form]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f | %.1f | %.2f |\n",
				form, s.N, s.Mean, s.StdDev, s.CVPercent, s.Median)
		}
		b.WriteString("\n")

		abe := finding.ABE
		fmt.Fprintf(&b, "**ABE result:** GMR %.4f, 90%% CI (%.4f, %.4f).\n\n", abe.GMR, abe.CILower, abe.CIUpper)
		if abe.Bioequivalent {
			b.WriteString("The confidence interval lies entirely within the 0.80-1.25 acceptance bounds: ")
			b.WriteString("average bioequivalence is **demonstrated**.\n\n")
		} else {
			b.WriteString("The confidence interval extends beyond the 0.80-1.25 acceptance bounds: ")
			b.WriteString("average bioequivalence is **not demonstrated**.\n\n")
		}
	}

	return []byte(b.String())
}

// BuildMethodsMarkdown renders the power/sample-size methods appendix
func BuildMethodsMarkdown(run *study.RunResult) []byte {
	var b strings.Builder

	b.WriteString("# Power and Sample-Size Methods\n\n")
	b.WriteString("Power is estimated by Monte-Carlo simulation: the log geometric mean ratio is\n")
	b.WriteString("sampled around its assumed value with the planning standard error, a 90%\n")
	b.WriteString("Student-t interval is formed, and the estimate is the fraction of intervals\n")
	b.WriteString("falling entirely within ln(0.80)..ln(1.25). Crossover designs halve the\n")
	b.WriteString("variance multiplier because each subject serves as its own control.\n\n")

	b.WriteString("## Planning scenarios\n\n")
	b.WriteString("| Scenario | Design | n | CV% | GMR | Estimated power |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, sc := range run.Planning.Scenarios {
		fmt.Fprintf(&b, "| %s | %s | %d | %.1f | %.2f | %.3f |\n",
			sc.Label, sc.Params.Design, sc.Params.N, sc.Params.CVPercent, sc.Params.GMR, sc.Power)
	}
	b.WriteString("\n## Sample-size search\n\n")

	spec := run.Planning.SearchSpec
	fmt.Fprintf(&b, "Target power %.0f%% at CV %.1f%% (%s design), even n from %d to %d.\n\n",
		spec.TargetPower*100, spec.CVPercent, spec.Design, spec.MinN, spec.MaxN)
	if run.Planning.SampleSize.Found {
		fmt.Fprintf(&b, "Result: **n = %d** with estimated power %.3f.\n",
			run.Planning.SampleSize.N, run.Planning.SampleSize.Power)
	} else {
		b.WriteString("Result: **no sample size in range** reaches the target power.\n")
	}

	return []byte(b.String())
}
