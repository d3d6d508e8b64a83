package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ssargent/dbcport/pkg/schema"
)

// DefaultExtensions are the file extensions Discover looks for when none are
// given.
var DefaultExtensions = []string{".dbc"}

// Job pairs a DBC file with the schema it decodes with.
type Job struct {
	Path       string
	RecordType string
	Schema     *schema.Schema
}

// Discover walks dir for files with one of exts, compared case-insensitively,
// and returns their paths sorted.
func Discover(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		for _, want := range exts {
			if strings.EqualFold(ext, want) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// RecordType returns the record type named by a DBC path: its base name
// without extension.
func RecordType(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Match pairs files with schemas from doc by case-insensitive record type.
// Files without a schema, and later files repeating a record type, come back
// as skipped outcomes.
func Match(files []string, doc *schema.Document) ([]Job, []Outcome) {
	var jobs []Job
	var skipped []Outcome
	seen := make(map[string]string)

	for _, path := range files {
		s, err := doc.Get(RecordType(path))
		if err != nil {
			skipped = append(skipped, Outcome{
				Path:       path,
				RecordType: RecordType(path),
				Status:     StatusSkipped,
				Err:        err,
			})
			continue
		}
		if first, ok := seen[s.Name()]; ok {
			skipped = append(skipped, Outcome{
				Path:       path,
				RecordType: s.Name(),
				Status:     StatusSkipped,
				Err:        fmt.Errorf("record type %s already imported from %s", s.Name(), first),
			})
			continue
		}
		seen[s.Name()] = path
		jobs = append(jobs, Job{Path: path, RecordType: s.Name(), Schema: s})
	}
	return jobs, skipped
}
