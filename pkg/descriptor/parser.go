package descriptor

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// Declaration is one field declaration as written in a descriptor unit.
type Declaration struct {
	Name     string // accessor name, becomes the field name
	Cell     string // cell type token, e.g. DBCLocStringCell
	TypeArgs string // raw generic arguments without the angle brackets, if any
	Size     *int   // explicit array size, nil for scalars and implicit arrays
	Offset   int    // byte offset from the start of the row
	Line     int
	Column   int
}

// HasSize reports whether the declaration carries an explicit array size.
func (d Declaration) HasSize() bool {
	return d.Size != nil
}

// argument is a single cell constructor argument: either an integer literal or
// a dotted path optionally followed by "+ INT".
type argument struct {
	literal bool
	path    string
	value   int
}

type parser struct {
	unit string
	toks []token
	pos  int
}

func newParser(unit, src string) *parser {
	return &parser{unit: unit, toks: tokenize(unit, src)}
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != scanner.EOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(at token, name, format string, args ...any) *ParseError {
	return &ParseError{
		Unit:   p.unit,
		Line:   at.pos.Line,
		Column: at.pos.Column,
		Name:   name,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// parse walks the whole unit and returns every field declaration it could
// parse together with the errors for the ones it could not.
func (p *parser) parse() ([]Declaration, []*ParseError) {
	var (
		decls []Declaration
		errs  []*ParseError
	)
	for p.peek().kind != scanner.EOF {
		if !p.atGetter() {
			p.next()
			continue
		}
		start := p.pos
		decl, ok, err := p.declaration()
		switch {
		case err != nil:
			errs = append(errs, err)
		case ok:
			decls = append(decls, decl)
			continue
		}
		// resynchronize just past this getter so a following one is not swallowed
		p.pos = start + 1
	}
	return decls, errs
}

// atGetter reports whether the cursor sits on `get IDENT ( )`.
func (p *parser) atGetter() bool {
	return p.peek().is(scanner.Ident, "get") &&
		p.peekAt(1).kind == scanner.Ident &&
		p.peekAt(2).isPunct('(') &&
		p.peekAt(3).isPunct(')')
}

// declaration parses
//
//	"get" IDENT "(" ")" [":" type] "{" "return" "new" IDENT [typeArgs] "(" args ")" [";"] "}"
//
// ok is false without an error when the getter is not a cell accessor.
func (p *parser) declaration() (Declaration, bool, *ParseError) {
	p.next() // get
	nameTok := p.next()
	name := nameTok.text
	p.next() // (
	p.next() // )

	if p.peek().isPunct(':') {
		if err := p.returnType(name); err != nil {
			return Declaration{}, false, err
		}
	}
	if !p.peek().isPunct('{') {
		return Declaration{}, false, nil
	}
	p.next()
	if !p.peek().is(scanner.Ident, "return") || !p.peekAt(1).is(scanner.Ident, "new") {
		return Declaration{}, false, nil
	}
	p.next()
	p.next()

	cellTok := p.peek()
	if cellTok.kind != scanner.Ident || !strings.Contains(cellTok.text, "Cell") {
		return Declaration{}, false, nil
	}
	p.next()

	decl := Declaration{
		Name:   name,
		Cell:   cellTok.text,
		Line:   nameTok.pos.Line,
		Column: nameTok.pos.Column,
	}

	if p.peek().isPunct('<') {
		args, err := p.typeArgs(name)
		if err != nil {
			return Declaration{}, false, err
		}
		decl.TypeArgs = args
	}

	if t := p.next(); !t.isPunct('(') {
		return Declaration{}, false, p.errorf(t, name, "expected ( after %s, found %q", decl.Cell, t.text)
	}
	args, err := p.arguments(name)
	if err != nil {
		return Declaration{}, false, err
	}

	if p.peek().isPunct(';') {
		p.next()
	}
	if t := p.next(); !t.isPunct('}') {
		return Declaration{}, false, p.errorf(t, name, "expected } closing accessor, found %q", t.text)
	}

	last := args[len(args)-1]
	switch {
	case last.literal:
		decl.Offset = last.value
	case last.path == "offset" || strings.HasSuffix(last.path, ".offset"):
		decl.Offset = last.value
	default:
		return Declaration{}, false, p.errorf(nameTok, name, "last argument %q is not a byte offset", last.path)
	}
	if decl.Offset < 0 {
		return Declaration{}, false, p.errorf(nameTok, name, "negative byte offset %d", decl.Offset)
	}

	for _, a := range args[:len(args)-1] {
		if a.literal {
			size := a.value
			if size <= 0 {
				return Declaration{}, false, p.errorf(nameTok, name, "array size must be positive, got %d", size)
			}
			decl.Size = &size
			break
		}
	}

	return decl, true, nil
}

// returnType skips a `: Type<...>` annotation up to the getter body.
func (p *parser) returnType(name string) *ParseError {
	colon := p.next()
	start := p.pos
	depth := 0
	for {
		t := p.peek()
		switch {
		case t.kind == scanner.EOF, t.isPunct(';'), t.isPunct('}'):
			return p.errorf(colon, name, "malformed return type annotation")
		case t.isPunct('<'):
			depth++
		case t.isPunct('>') && depth > 0:
			depth--
		case t.isPunct('{') && depth == 0:
			if p.pos == start {
				return p.errorf(colon, name, "missing return type")
			}
			return nil
		}
		p.next()
	}
}

// typeArgs consumes a balanced <...> group and returns its inner text.
func (p *parser) typeArgs(name string) (string, *ParseError) {
	open := p.next()
	depth := 1
	var (
		parts []string
		prev  token
	)
	for depth > 0 {
		t := p.next()
		switch {
		case t.kind == scanner.EOF:
			return "", p.errorf(open, name, "unterminated type arguments")
		case t.isPunct('<'):
			depth++
		case t.isPunct('>'):
			depth--
		case t.isPunct('{'), t.isPunct('}'), t.isPunct(';'):
			return "", p.errorf(t, name, "unexpected %q in type arguments", t.text)
		}
		if depth > 0 {
			if word(t) && word(prev) {
				parts = append(parts, " ")
			}
			parts = append(parts, t.text)
		}
		prev = t
	}
	return strings.Join(parts, ""), nil
}

// arguments parses `arg { "," arg } ")"`; the opening parenthesis has already
// been consumed.
func (p *parser) arguments(name string) ([]argument, *ParseError) {
	var args []argument
	for {
		a, err := p.argument(name)
		if err != nil {
			return nil, err
		}
		args = append(args, a)

		t := p.next()
		switch {
		case t.isPunct(','):
			continue
		case t.isPunct(')'):
			return args, nil
		default:
			return nil, p.errorf(t, name, "expected , or ) in cell arguments, found %q", t.text)
		}
	}
}

func (p *parser) argument(name string) (argument, *ParseError) {
	t := p.next()
	switch t.kind {
	case scanner.Int:
		n, err := parseInt(t.text)
		if err != nil {
			return argument{}, p.errorf(t, name, "bad integer %q", t.text)
		}
		return argument{literal: true, value: n}, nil
	case scanner.Ident:
		path := []string{t.text}
		for p.peek().isPunct('.') && p.peekAt(1).kind == scanner.Ident {
			p.next()
			path = append(path, p.next().text)
		}
		a := argument{path: strings.Join(path, ".")}
		if p.peek().isPunct('+') {
			p.next()
			n := p.next()
			if n.kind != scanner.Int {
				return argument{}, p.errorf(n, name, "expected integer after +, found %q", n.text)
			}
			v, err := parseInt(n.text)
			if err != nil {
				return argument{}, p.errorf(n, name, "bad integer %q", n.text)
			}
			a.value = v
		}
		return a, nil
	default:
		return argument{}, p.errorf(t, name, "unexpected %q in cell arguments", t.text)
	}
}

func parseInt(text string) (int, error) {
	n, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
