package descriptor

import (
	"strings"
	"text/scanner"
)

// token is one lexical element of a descriptor unit.
type token struct {
	kind rune // scanner.Ident, scanner.Int, scanner.EOF or the punctuation rune itself
	text string
	pos  scanner.Position
}

func (t token) is(kind rune, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) isPunct(r rune) bool {
	return t.kind == r
}

// tokenize splits src into tokens, dropping comments. Lexical problems such as
// unterminated strings are ignored; the parser only cares about the tokens that
// make up field declarations.
func tokenize(unit, src string) []token {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Filename = unit
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanStrings | scanner.ScanRawStrings | scanner.ScanComments | scanner.SkipComments
	s.Error = func(*scanner.Scanner, string) {}

	var toks []token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		toks = append(toks, token{kind: tok, text: s.TokenText(), pos: s.Position})
	}
	return append(toks, token{kind: scanner.EOF, pos: s.Pos()})
}

// word reports whether t is an identifier or number, which need a separator
// when written next to each other.
func word(t token) bool {
	return t.kind == scanner.Ident || t.kind == scanner.Int
}
