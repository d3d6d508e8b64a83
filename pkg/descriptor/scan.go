package descriptor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PrimaryKeyName is the field name that marks the record's primary key.
const PrimaryKeyName = "ID"

// DefaultExtensions lists the descriptor file extensions ScanDir looks at when
// none are given.
var DefaultExtensions = []string{".ts"}

// Unit is the scan result for one descriptor source.
type Unit struct {
	Name         string // record type name, the file base name without extension
	Path         string
	Declarations []Declaration
	Errors       []*ParseError
}

// Empty reports whether the unit produced no field declarations. Such a
// record type cannot be given a schema.
func (u *Unit) Empty() bool {
	return len(u.Declarations) == 0
}

// Scan extracts the field declarations of one descriptor unit.
//
// The first declaration named ID wins and later ones are dropped. Any other
// repeated name keeps its first declaration and reports a ParseError for the
// rest. The result is sorted by field name.
func Scan(unit, src string) ([]Declaration, []*ParseError) {
	decls, errs := newParser(unit, src).parse()

	seen := make(map[string]bool, len(decls))
	out := decls[:0]
	for _, d := range decls {
		if seen[d.Name] {
			if d.Name != PrimaryKeyName {
				errs = append(errs, &ParseError{
					Unit: unit, Line: d.Line, Column: d.Column, Name: d.Name,
					Msg: "duplicate field declaration",
				})
			}
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, errs
}

// ScanFile reads and scans a single descriptor file.
func ScanFile(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}

	name := UnitName(path)
	decls, errs := Scan(filepath.Base(path), string(data))
	return &Unit{Name: name, Path: path, Declarations: decls, Errors: errs}, nil
}

// ScanDir scans every file under dir whose extension is in exts. Units are
// returned sorted by name. A read failure on one file aborts the walk; parse
// problems never do.
func ScanDir(dir string, exts []string) ([]*Unit, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var units []*Unit
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasExtension(path, exts) {
			return nil
		}
		unit, err := ScanFile(path)
		if err != nil {
			return err
		}
		units = append(units, unit)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan descriptor dir %s: %w", dir, err)
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Name < units[j].Name })
	return units, nil
}

// UnitName derives the record type name from a descriptor path.
func UnitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
