package parser

import (
	"errors"
	"fmt"
	"go/constant"
	"go/token"
	"io"
	"text/scanner"
)

const (
	_IDENT = 57346 + iota
	_STRING_LIT
	_RAW_STRING_LIT
	_RUNE_LIT
	_INT_LIT
	_FLOAT_LIT
	_IMAG_LIT
	_ERROR
	_NIL
	_TRUE
	_FALSE
	_EOL
)

// names used when a token shows up somewhere it shouldn't
var tokenNames = map[int]string{
	0:               "end of input",
	_IDENT:          "identifier",
	_STRING_LIT:     "string literal",
	_RAW_STRING_LIT: "raw string literal",
	_RUNE_LIT:       "rune literal",
	_INT_LIT:        "int literal",
	_FLOAT_LIT:      "float literal",
	_IMAG_LIT:       "imaginary literal",
	_EOL:            "end-of-line",
	_NIL:            `"nil"`,
	_TRUE:           `"true"`,
	_FALSE:          `"false"`,
}

func tokenName(tok int) string {
	if n, ok := tokenNames[tok]; ok {
		return n
	}
	return fmt.Sprintf("%q", rune(tok))
}

var keywords = map[string]int{
	"nil":   _NIL,
	"true":  _TRUE,
	"false": _FALSE,
}

// a newline directly after one of these does not end the annotation
var trailingRunes = map[rune]struct{}{
	',': {},
	'.': {},
	'(': {},
	'=': {},
	'-': {},
}

type lexVal struct {
	n   nameNode
	l   LiteralNode
	p   token.Position
	end token.Position
	err error
}

type annoLex struct {
	err error

	nextRune rune
	nextTok  string
	nextPos  scanner.Position
	nextEnd  scanner.Position

	lastRune rune
	lastPos  scanner.Position

	depth int

	s scanner.Scanner
}

func newLexer(filename string, r io.Reader) *annoLex {
	var l annoLex
	l.s.Init(r)
	l.s.Filename = filename
	l.s.Mode = l.s.Mode &^ (scanner.ScanComments | scanner.SkipComments)
	l.s.Whitespace = 0
	l.s.Error = func(s *scanner.Scanner, msg string) {
		l.err = errors.New(msg)
	}
	return &l
}

func toPosition(p scanner.Position) token.Position {
	return token.Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// Lex returns the next token. Literal and identifier details are stored in
// lval. Zero is returned at the end of input.
func (l *annoLex) Lex(lval *lexVal) (t int) {
	if l.err != nil {
		lval.err = l.err
		return _ERROR
	}

	var r rune
	var pos, end scanner.Position
	defer func() {
		if r != scanner.EOF {
			l.lastRune = r
			l.lastPos = pos
		}
		if t == _ERROR && l.err == nil {
			l.err = lval.err
		}
	}()

	for {
		var tok string
		if l.nextRune != 0 {
			r, tok, pos, end = l.nextRune, l.nextTok, l.nextPos, l.nextEnd
			l.nextRune = 0
			l.nextTok = ""
		} else {
			pos = l.s.Pos()
			r = l.s.Scan()
			tok = l.s.TokenText()
			end = l.s.Pos()
			if l.err != nil {
				lval.p = toPosition(pos)
				lval.err = l.err
				return _ERROR
			}
		}

		if r == scanner.EOF {
			lval.p = toPosition(pos)
			lval.end = lval.p
			return 0
		}

		// we handle whitespace ourselves so that we can easily know the
		// *start* position for a token (otherwise, scanner package only makes
		// easy to determine *end* position for a token)
		if r == ' ' || r == '\t' || r == '\r' {
			continue
		}

		lval.p = toPosition(pos)
		lval.end = toPosition(end)

		switch r {
		case scanner.Ident:
			if v, ok := keywords[tok]; ok {
				return v
			}
			lval.n = nameNode{Val: tok, Pos: lval.p, End: lval.end}
			return _IDENT

		case scanner.Int, scanner.Float:
			kind := token.INT
			ret := _INT_LIT
			if r == scanner.Float {
				kind = token.FLOAT
				ret = _FLOAT_LIT
			}
			if l.s.Peek() == 'i' {
				np := l.s.Pos()
				nr := l.s.Scan()
				nt := l.s.TokenText()
				ne := l.s.Pos()
				if nr == scanner.Ident && nt == "i" {
					// it's an imaginary constant
					v := constant.MakeFromLiteral(tok+"i", token.IMAG, 0)
					lval.l = LiteralNode{Val: v, pos: lval.p, end: toPosition(ne)}
					lval.end = lval.l.end
					return _IMAG_LIT
				}
				// make sure we get this token next time
				l.nextRune, l.nextTok, l.nextPos, l.nextEnd = nr, nt, np, ne
			}
			v := constant.MakeFromLiteral(tok, kind, 0)
			lval.l = LiteralNode{Val: v, pos: lval.p, end: lval.end}
			return ret

		case scanner.Char:
			v := constant.MakeFromLiteral(tok, token.CHAR, 0)
			lval.l = LiteralNode{Val: v, pos: lval.p, end: lval.end}
			return _RUNE_LIT

		case scanner.String, scanner.RawString:
			v := constant.MakeFromLiteral(tok, token.STRING, 0)
			raw := tok[0] == '`'
			lval.l = LiteralNode{Val: v, Raw: raw, pos: lval.p, end: lval.end}
			if raw {
				return _RAW_STRING_LIT
			}
			return _STRING_LIT

		case '\n':
			if l.depth > 0 {
				continue
			}
			if _, ok := trailingRunes[l.lastRune]; ok {
				continue
			}
			return _EOL

		case '(':
			l.depth++

		case ')':
			if l.depth > 0 {
				l.depth--
			}
		}

		return int(r)
	}
}

// ParseError describes malformed annotation text. Its position is relative
// to the text given to ParseAnnotations.
type ParseError struct {
	err error
	pos token.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.pos.Line, e.pos.Column, e.err)
}

func (e *ParseError) Underlying() error {
	return e.err
}

func (e *ParseError) Unwrap() error {
	return e.err
}

func (e *ParseError) Pos() token.Position {
	return e.pos
}

type annoParser struct {
	lex *annoLex
	tok int
	val lexVal
}

func (p *annoParser) next() {
	p.val = lexVal{}
	p.tok = p.lex.Lex(&p.val)
}

func (p *annoParser) errorf(format string, args ...interface{}) *ParseError {
	if p.tok == _ERROR {
		return &ParseError{err: p.val.err, pos: p.val.p}
	}
	return &ParseError{err: fmt.Errorf(format, args...), pos: p.val.p}
}

func (p *annoParser) unexpected(expecting string) *ParseError {
	return p.errorf("syntax error: unexpected %s, expecting %s", tokenName(p.tok), expecting)
}

// ParseAnnotations parses a sequence of annotations, one per line. Each
// annotation starts with '@' followed by a name and, optionally, either
// " = value" or a parenthesized, comma-separated list of nested items:
//
//	@deprecated
//	@doc_file = "docs/widget.md"
//	@doc(file = "docs/widget.md", hidden)
//
// An annotation may span multiple lines if the line break occurs inside
// parentheses or after a comma or '='. Blank lines are ignored.
func ParseAnnotations(filename string, r io.Reader) ([]Annotation, *ParseError) {
	p := annoParser{lex: newLexer(filename, r)}
	p.next()

	var res []Annotation
	for {
		for p.tok == _EOL {
			p.next()
		}
		if p.tok == 0 {
			return res, nil
		}
		a, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		res = append(res, a)
		if p.tok != _EOL && p.tok != 0 {
			return nil, p.unexpected("end-of-line")
		}
	}
}

func (p *annoParser) parseAnnotation() (Annotation, *ParseError) {
	if p.tok != '@' {
		return Annotation{}, p.unexpected(`"@"`)
	}
	at := p.val.p
	p.next()
	m, err := p.parseMetaItem()
	if err != nil {
		return Annotation{}, err
	}
	return Annotation{MetaItem: m, At: at}, nil
}

func (p *annoParser) parseIdentifier() (Identifier, token.Position, *ParseError) {
	if p.tok != _IDENT {
		return Identifier{}, token.Position{}, p.unexpected("identifier")
	}
	first := p.val.n
	p.next()
	if p.tok != '.' {
		return Identifier{Name: first.Val, Pos: first.Pos}, first.End, nil
	}
	p.next()
	if p.tok != _IDENT {
		return Identifier{}, token.Position{}, p.unexpected("identifier")
	}
	second := p.val.n
	p.next()
	return Identifier{PackageAlias: first.Val, Name: second.Val, Pos: first.Pos}, second.End, nil
}

func (p *annoParser) parseMetaItem() (MetaItem, *ParseError) {
	id, end, err := p.parseIdentifier()
	if err != nil {
		return MetaItem{}, err
	}
	m := MetaItem{Name: id, Kind: Word, end: end}

	switch p.tok {
	case '=':
		p.next()
		v, err := p.parseValue()
		if err != nil {
			return MetaItem{}, err
		}
		m.Kind = NameValue
		m.Value = v
		m.end = v.End()

	case '(':
		p.next()
		m.Kind = List
		m.List = []MetaItem{}
		for p.tok != ')' {
			item, err := p.parseMetaItem()
			if err != nil {
				return MetaItem{}, err
			}
			m.List = append(m.List, item)
			if p.tok == ',' {
				p.next()
				continue
			}
			if p.tok != ')' {
				return MetaItem{}, p.unexpected(`"," or ")"`)
			}
		}
		m.end = p.val.end
		p.next()
	}
	return m, nil
}

func (p *annoParser) parseValue() (ValueNode, *ParseError) {
	switch p.tok {
	case _STRING_LIT, _RAW_STRING_LIT, _RUNE_LIT, _INT_LIT, _FLOAT_LIT, _IMAG_LIT:
		lit := p.val.l
		p.next()
		return lit, nil

	case _TRUE, _FALSE:
		lit := LiteralNode{Val: constant.MakeBool(p.tok == _TRUE), pos: p.val.p, end: p.val.end}
		p.next()
		return lit, nil

	case _NIL:
		lit := LiteralNode{pos: p.val.p, end: p.val.end}
		p.next()
		return lit, nil

	case '-':
		pos := p.val.p
		p.next()
		switch p.tok {
		case _INT_LIT, _FLOAT_LIT, _IMAG_LIT:
			lit := p.val.l
			lit.Val = constant.UnaryOp(token.SUB, lit.Val, 0)
			lit.pos = pos
			p.next()
			return lit, nil
		}
		return nil, p.unexpected("numeric literal")

	case _IDENT:
		id, end, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return RefNode{Ident: id, end: end}, nil
	}
	return nil, p.unexpected("value")
}
