package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"bioeq/adapters/artifact"
	"bioeq/adapters/dataset"
	"bioeq/app"
	"bioeq/domain/study"
	"bioeq/internal"
	"bioeq/internal/power"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bioeq-cli",
		Short: "Bioequivalence power estimation and course-report tooling",
	}

	rootCmd.AddCommand(
		newPowerCmd(),
		newSampleSizeCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPowerCmd() *cobra.Command {
	var (
		n       int
		cv      float64
		gmr     float64
		design  string
		alpha   float64
		nsim    int
		seed    int64
		workers int
	)

	cmd := &cobra.Command{
		Use:   "power",
		Short: "Estimate the probability of demonstrating bioequivalence",
		Long: `Estimate the probability that a 90% confidence interval on the geometric
mean ratio falls entirely within the 0.80-1.25 acceptance bounds.

Example: bioeq-cli power --n 24 --cv 30 --design crossover --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := study.ParseDesign(design)
			if err != nil {
				return err
			}
			params := study.SimulationParams{
				N: n, CVPercent: cv, GMR: gmr, Design: d, Alpha: alpha, NSim: nsim,
			}
			var p float64
			if workers > 1 {
				p, err = power.EstimateConcurrent(cmd.Context(), params, seed, workers)
			} else {
				p, err = power.Estimate(params, rand.New(rand.NewSource(seed)))
			}
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"params": params,
				"power":  p,
			})
		},
	}

	cmd.Flags().IntVar(&n, "n", 24, "Total sample size")
	cmd.Flags().Float64Var(&cv, "cv", 30, "Assumed CV percent")
	cmd.Flags().Float64Var(&gmr, "gmr", 1.0, "True geometric mean ratio")
	cmd.Flags().StringVar(&design, "design", "crossover", "Study design (parallel or crossover)")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "One-sided significance level")
	cmd.Flags().IntVar(&nsim, "nsim", 10000, "Monte-Carlo draws")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for reproducible estimates")
	cmd.Flags().IntVar(&workers, "workers", 1, "Concurrent simulation workers")

	return cmd
}

func newSampleSizeCmd() *cobra.Command {
	var (
		target float64
		cv     float64
		gmr    float64
		design string
		alpha  float64
		minN   int
		maxN   int
		step   int
		nsim   int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "samplesize",
		Short: "Search for the minimal even n reaching a target power",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := study.ParseDesign(design)
			if err != nil {
				return err
			}
			spec := study.SampleSizeSpec{
				TargetPower: target, CVPercent: cv, GMR: gmr, Design: d, Alpha: alpha,
				MinN: minN, MaxN: maxN, Step: step, NSim: nsim,
			}
			res, err := power.FindSampleSize(spec, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}
			if !res.Found {
				fmt.Fprintf(cmd.OutOrStdout(),
					"no sample size up to n=%d reaches %.0f%% power at cv=%.1f%%\n",
					spec.MaxN, spec.TargetPower*100, spec.CVPercent)
				return nil
			}
			return printJSON(map[string]interface{}{
				"spec":   spec,
				"result": res,
			})
		},
	}

	cmd.Flags().Float64Var(&target, "target", 0.80, "Target power in (0,1]")
	cmd.Flags().Float64Var(&cv, "cv", 30, "Assumed CV percent")
	cmd.Flags().Float64Var(&gmr, "gmr", 1.0, "True geometric mean ratio")
	cmd.Flags().StringVar(&design, "design", "crossover", "Study design (parallel or crossover)")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "One-sided significance level")
	cmd.Flags().IntVar(&minN, "min-n", 8, "Minimum sample size (rounded up to even)")
	cmd.Flags().IntVar(&maxN, "max-n", 100, "Maximum sample size")
	cmd.Flags().IntVar(&step, "step", 2, "Search step (even)")
	cmd.Flags().IntVar(&nsim, "nsim", 10000, "Monte-Carlo draws per candidate n")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for reproducible estimates")

	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		outDir string
		seed   int64
		nsim   int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full course analysis and write the report artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewDefaultLogger()
			sink := artifact.NewFSSink(outDir)
			svc := app.NewReportService(logger, dataset.NewCourseSource(), sink, nil, seed, nsim)

			run, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s complete; artifacts in %s\n", run.RunID, outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "output", "Artifact output directory")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic simulation")
	cmd.Flags().IntVar(&nsim, "nsim", 10000, "Monte-Carlo draws per estimate")

	return cmd
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
