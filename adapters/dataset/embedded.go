package dataset

import (
	"embed"
	"fmt"

	"bioeq/domain/study"
)

//go:embed data/*.csv
var courseData embed.FS

// Names of the two pre-packaged course studies
const (
	ParallelStudyName  = "parallel-be-study"
	CrossoverStudyName = "crossover-be-study"
)

func loadEmbedded(file, name string, design study.Design) (*study.Study, error) {
	raw, err := courseData.ReadFile("data/" + file)
	if err != nil {
		return nil, fmt.Errorf("embedded dataset %s: %w", file, err)
	}
	table, err := ParseCSV(raw)
	if err != nil {
		return nil, fmt.Errorf("embedded dataset %s: %w", file, err)
	}
	return BuildStudy(name, design, table)
}

// LoadParallelStudy returns the packaged parallel-design study
func LoadParallelStudy() (*study.Study, error) {
	return loadEmbedded("parallel.csv", ParallelStudyName, study.DesignParallel)
}

// LoadCrossoverStudy returns the packaged crossover-design study
func LoadCrossoverStudy() (*study.Study, error) {
	return loadEmbedded("crossover.csv", CrossoverStudyName, study.DesignCrossover)
}

// LoadCourseStudies returns both packaged studies in report order
func LoadCourseStudies() ([]*study.Study, error) {
	par, err := LoadParallelStudy()
	if err != nil {
		return nil, err
	}
	xo, err := LoadCrossoverStudy()
	if err != nil {
		return nil, err
	}
	return []*study.Study{par, xo}, nil
}
