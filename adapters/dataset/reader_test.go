package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bioeq/domain/study"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReader_CSVFile(t *testing.T) {
	path := writeTempCSV(t,
		"subject,treatment,auc\n"+
			"S1,Test,100.5\n"+
			"S2,Reference,98.2\n"+
			",,\n") // trailing empty row is skipped

	table, err := NewReader(path).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"subject", "treatment", "auc"}, table.Headers)
	assert.Len(t, table.Rows, 2)
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "absent.csv")).Read()
	assert.Error(t, err)
}

func TestFileSource_Studies(t *testing.T) {
	path := writeTempCSV(t,
		"subject,treatment,auc\n"+
			"S1,Test,100.5\n"+
			"S2,Test,104.0\n"+
			"S3,Reference,98.2\n"+
			"S4,Reference,99.0\n")

	source := NewFileSource(FileSpec{Path: path, Name: "file-study", Design: study.DesignParallel})
	studies, err := source.Studies(context.Background())
	require.NoError(t, err)
	require.Len(t, studies, 1)
	assert.Equal(t, "file-study", studies[0].Name)
	assert.Len(t, studies[0].Observations, 4)
}

func TestFileSource_PropagatesBuildErrors(t *testing.T) {
	path := writeTempCSV(t, "subject,auc\nS1,100\n")
	source := NewFileSource(FileSpec{Path: path, Name: "bad", Design: study.DesignParallel})
	_, err := source.Studies(context.Background())
	assert.Error(t, err)
}
