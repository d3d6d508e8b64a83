package descriptor

import "fmt"

// ParseError reports a field declaration that could not be parsed. It is not
// fatal: the scanner skips the declaration and continues with the unit.
type ParseError struct {
	Unit   string // descriptor unit (file) name
	Line   int
	Column int
	Name   string // field name, when the parser got that far
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s:%d:%d: field %s: %s", e.Unit, e.Line, e.Column, e.Name, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Unit, e.Line, e.Column, e.Msg)
}
