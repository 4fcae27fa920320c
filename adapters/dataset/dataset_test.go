package dataset

import (
	"errors"
	"testing"

	"bioeq/domain/core"
	"bioeq/domain/study"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParallelStudy(t *testing.T) {
	st, err := LoadParallelStudy()
	require.NoError(t, err)

	assert.Equal(t, ParallelStudyName, st.Name)
	assert.Equal(t, study.DesignParallel, st.Design)
	assert.Equal(t, "auc_0_t", st.EndpointName)
	assert.Len(t, st.Observations, 60)

	test, ref := st.ByFormulation()
	assert.Len(t, test, 30)
	assert.Len(t, ref, 30)
	for _, v := range append(test, ref...) {
		assert.Greater(t, v, 0.0)
	}
}

func TestLoadCrossoverStudy(t *testing.T) {
	st, err := LoadCrossoverStudy()
	require.NoError(t, err)

	assert.Equal(t, study.DesignCrossover, st.Design)
	assert.Len(t, st.Observations, 36, "18 subjects x 2 periods")
	assert.Len(t, st.Subjects(), 18)

	// Every subject has exactly one test and one reference period.
	perSubject := make(map[string]map[string]int)
	for _, obs := range st.Observations {
		if perSubject[obs.Subject] == nil {
			perSubject[obs.Subject] = make(map[string]int)
		}
		perSubject[obs.Subject][obs.Formulation]++
		assert.Contains(t, []int{1, 2}, obs.Period)
		assert.Contains(t, []string{"TR", "RT"}, obs.Sequence)
	}
	for subj, counts := range perSubject {
		assert.Equal(t, 1, counts[study.FormulationTest], "subject %s test count", subj)
		assert.Equal(t, 1, counts[study.FormulationReference], "subject %s reference count", subj)
	}
}

func TestBuildStudy_FormulationColumnPriority(t *testing.T) {
	// Both candidate columns present: "formulation" outranks "treatment".
	table, err := ParseCSV([]byte(
		"subject,formulation,treatment,auc\n" +
			"S1,Test,Reference,100\n" +
			"S2,Reference,Test,110\n"))
	require.NoError(t, err)

	st, err := BuildStudy("prio", study.DesignParallel, table)
	require.NoError(t, err)
	assert.Equal(t, study.FormulationTest, st.Observations[0].Formulation)
	assert.Equal(t, study.FormulationReference, st.Observations[1].Formulation)
}

func TestBuildStudy_FallbackColumns(t *testing.T) {
	table, err := ParseCSV([]byte(
		"id,arm,value\n" +
			"1,T,95.5\n" +
			"2,R,102.3\n"))
	require.NoError(t, err)

	st, err := BuildStudy("fallback", study.DesignParallel, table)
	require.NoError(t, err)
	assert.Equal(t, "value", st.EndpointName)
	assert.Equal(t, study.FormulationTest, st.Observations[0].Formulation)
	assert.Equal(t, "1", st.Observations[0].Subject)
}

func TestBuildStudy_NoFormulationColumn(t *testing.T) {
	table, err := ParseCSV([]byte("subject,auc\nS1,100\n"))
	require.NoError(t, err)

	_, err = BuildStudy("bad", study.DesignParallel, table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoFormulation), "got %v", err)
}

func TestBuildStudy_NoEndpointColumn(t *testing.T) {
	table, err := ParseCSV([]byte("subject,treatment,notes\nS1,Test,fine\n"))
	require.NoError(t, err)

	_, err = BuildStudy("bad", study.DesignParallel, table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoEndpoint), "got %v", err)
}

func TestBuildStudy_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"unknown label", "subject,treatment,auc\nS1,Placebo,100\n"},
		{"non-numeric endpoint", "subject,treatment,auc\nS1,Test,abc\n"},
		{"nonpositive endpoint", "subject,treatment,auc\nS1,Test,0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := ParseCSV([]byte(tc.csv))
			require.NoError(t, err)
			_, err = BuildStudy("bad", study.DesignParallel, table)
			assert.Error(t, err)
		})
	}
}

func TestBuildStudy_CrossoverNeedsPeriod(t *testing.T) {
	table, err := ParseCSV([]byte("subject,formulation,auc\nS1,Test,100\nS1,Reference,90\n"))
	require.NoError(t, err)

	_, err = BuildStudy("xo", study.DesignCrossover, table)
	assert.Error(t, err)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, err := ParseCSV([]byte("subject,treatment,auc\n"))
	assert.Error(t, err)
}
