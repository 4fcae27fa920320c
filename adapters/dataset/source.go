package dataset

import (
	"context"

	"bioeq/domain/study"
)

// CourseSource serves the two embedded course studies through the
// DatasetSource port.
type CourseSource struct{}

// NewCourseSource creates the embedded dataset source
func NewCourseSource() *CourseSource {
	return &CourseSource{}
}

// Studies returns both packaged studies
func (s *CourseSource) Studies(_ context.Context) ([]*study.Study, error) {
	return LoadCourseStudies()
}

// FileSource loads studies from caller-supplied CSV or XLSX files
type FileSource struct {
	specs []FileSpec
}

// FileSpec names one study file and its design
type FileSpec struct {
	Path   string
	Name   string
	Design study.Design
}

// NewFileSource creates a file-backed dataset source
func NewFileSource(specs ...FileSpec) *FileSource {
	return &FileSource{specs: specs}
}

// Studies reads and assembles every configured file
func (s *FileSource) Studies(_ context.Context) ([]*study.Study, error) {
	var out []*study.Study
	for _, spec := range s.specs {
		table, err := NewReader(spec.Path).Read()
		if err != nil {
			return nil, err
		}
		st, err := BuildStudy(spec.Name, spec.Design, table)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
