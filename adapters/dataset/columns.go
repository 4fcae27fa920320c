package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"bioeq/domain/core"
	"bioeq/domain/study"
)

// Column resolution is a prioritized lookup: datasets from different sources
// name the same fields differently, so each role tries its candidates in
// order and the first hit wins.
var (
	formulationColumns = []string{"formulation", "treatment", "trt", "group", "arm"}
	subjectColumns     = []string{"subject", "subject_id", "subj", "id"}
	endpointColumns    = []string{"auc_0_t", "auc_0_inf", "auc", "cmax", "endpoint", "value"}
	periodColumns      = []string{"period"}
	sequenceColumns    = []string{"sequence", "seq"}
)

func resolveColumn(t *Table, candidates []string) (int, string) {
	for _, name := range candidates {
		if idx := t.ColumnIndex(name); idx >= 0 {
			return idx, t.Headers[idx]
		}
	}
	return -1, ""
}

// normalizeFormulation maps raw treatment labels onto Test/Reference
func normalizeFormulation(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "test", "t":
		return study.FormulationTest, nil
	case "reference", "ref", "r":
		return study.FormulationReference, nil
	default:
		return "", fmt.Errorf("unrecognized formulation label %q", raw)
	}
}

// BuildStudy assembles a domain study from a raw table. The formulation
// column is resolved through the prioritized candidate list; if every
// strategy misses, the dataset is rejected with a descriptive error rather
// than guessed at.
func BuildStudy(name string, design study.Design, t *Table) (*study.Study, error) {
	formIdx, _ := resolveColumn(t, formulationColumns)
	if formIdx < 0 {
		return nil, fmt.Errorf("%w: tried columns %s", core.ErrNoFormulation, strings.Join(formulationColumns, ", "))
	}

	subjIdx, _ := resolveColumn(t, subjectColumns)
	if subjIdx < 0 {
		return nil, fmt.Errorf("no subject column found (tried %s)", strings.Join(subjectColumns, ", "))
	}

	endIdx, endName := resolveColumn(t, endpointColumns)
	if endIdx < 0 {
		return nil, fmt.Errorf("%w: tried columns %s", core.ErrNoEndpoint, strings.Join(endpointColumns, ", "))
	}

	perIdx, _ := resolveColumn(t, periodColumns)
	seqIdx, _ := resolveColumn(t, sequenceColumns)
	if design == study.DesignCrossover && perIdx < 0 {
		return nil, fmt.Errorf("crossover dataset %s has no period column", name)
	}

	st := &study.Study{Name: name, Design: design, EndpointName: endName}
	for i, row := range t.Rows {
		form, err := normalizeFormulation(row[formIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+2, name, err)
		}

		endpoint, err := strconv.ParseFloat(strings.TrimSpace(row[endIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %s is not numeric: %q", i+2, name, endName, row[endIdx])
		}
		if endpoint <= 0 {
			return nil, fmt.Errorf("row %d of %s: %s must be positive for log-scale analysis, got %g", i+2, name, endName, endpoint)
		}

		obs := study.Observation{
			Subject:     strings.TrimSpace(row[subjIdx]),
			Formulation: form,
			Endpoint:    endpoint,
		}
		if perIdx >= 0 {
			period, err := strconv.Atoi(strings.TrimSpace(row[perIdx]))
			if err != nil {
				return nil, fmt.Errorf("row %d of %s: period is not an integer: %q", i+2, name, row[perIdx])
			}
			obs.Period = period
		}
		if seqIdx >= 0 {
			obs.Sequence = strings.TrimSpace(row[seqIdx])
		}
		st.Observations = append(st.Observations, obs)
	}

	if len(st.Observations) == 0 {
		return nil, fmt.Errorf("dataset %s contains no usable observations", name)
	}
	return st, nil
}
