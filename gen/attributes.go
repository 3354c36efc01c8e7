package gen

import (
	"fmt"
	"go/ast"
	"go/scanner"
	"go/token"
	"reflect"
	"strconv"
	"strings"
)

const (
	directivePrefix = "//mortar:"
	tagKey          = "mortar"
)

// directive is the argument text of one //mortar: comment.
type directive struct {
	text string
	pos  token.Position
}

// directives holds the mortar directives found in a type's doc comments.
type directives struct {
	derive []directive
	attrs  []directive
}

func (d directives) empty() bool {
	return len(d.derive) == 0 && len(d.attrs) == 0
}

func collectDirectives(fset *token.FileSet, groups ...*ast.CommentGroup) directives {
	var d directives
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			rest, ok := strings.CutPrefix(c.Text, directivePrefix)
			if !ok {
				continue
			}
			name, args, _ := strings.Cut(rest, " ")
			pos := fset.Position(c.Slash)
			pos.Column += len(directivePrefix) + len(name) + 1
			switch name {
			case "derive":
				d.derive = append(d.derive, directive{text: args, pos: pos})
			case "attr":
				d.attrs = append(d.attrs, directive{text: args, pos: pos})
			default:
				pos.Column -= len(name) + 1
				d.attrs = append(d.attrs, directive{text: rest, pos: pos})
			}
		}
	}
	return d
}

// parseDerive parses the generator list of a //mortar:derive directive.
func parseDerive(text string, pos token.Position) (Derive, error) {
	var d Derive
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) == 0 {
		return 0, fmt.Errorf("%s: mortar:derive needs at least one of Trace, TypeName, Copy", pos)
	}
	for _, f := range fields {
		found := false
		for _, n := range deriveNames {
			if n.name == f {
				d |= n.d
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("%s: unsupported derive %q", pos, f)
		}
	}
	return d, nil
}

type attrToken struct {
	pos token.Pos
	tok token.Token
	lit string
}

type attrParser struct {
	base token.Position
	toks []attrToken
	i    int
}

func newAttrParser(text string, base token.Position) (*attrParser, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(text))
	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(text), func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)

	p := &attrParser{base: base}
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		if tok == token.ILLEGAL {
			return nil, fmt.Errorf("%s: invalid character %q in mortar attribute", base, lit)
		}
		if lit == "" {
			lit = tok.String()
		}
		p.toks = append(p.toks, attrToken{pos: pos - token.Pos(file.Base()), tok: tok, lit: lit})
	}
	if err := errs.Err(); err != nil {
		return nil, fmt.Errorf("%s: %v", base, err)
	}
	return p, nil
}

func (p *attrParser) done() bool {
	return p.i >= len(p.toks)
}

func (p *attrParser) errorf(format string, args ...any) error {
	pos := p.base
	if !p.done() {
		pos.Column += int(p.toks[p.i].pos)
	}
	return fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...))
}

func (p *attrParser) expect(tok token.Token) (string, error) {
	if p.done() {
		return "", p.errorf("expected %s at end of mortar attribute", tok)
	}
	t := p.toks[p.i]
	if t.tok != tok {
		return "", p.errorf("expected %s, found %q", tok, t.lit)
	}
	p.i++
	return t.lit, nil
}

func (p *attrParser) expectString() (string, error) {
	lit, err := p.expect(token.STRING)
	if err != nil {
		return "", err
	}
	return strconv.Unquote(lit)
}

// parseOptions parses a //mortar:attr directive (field=false) or a mortar
// struct tag (field=true) into opts.
//
//	options = option { "," option } .
//	option  = ident [ "=" string ] | ident "(" ident ")" .
func parseOptions(text string, base token.Position, field bool, opts *Options) error {
	p, err := newAttrParser(text, base)
	if err != nil {
		return err
	}
	if p.done() {
		return p.errorf("empty mortar attribute")
	}
	for !p.done() {
		key, err := p.expect(token.IDENT)
		if err != nil {
			return err
		}
		if field && key != "trace" {
			p.i--
			return p.errorf("unsupported mortar attribute %q for fields", key)
		}
		switch key {
		case "memory", "runtime", "type_name":
			if _, err := p.expect(token.ASSIGN); err != nil {
				return err
			}
			val, err := p.expectString()
			if err != nil {
				return err
			}
			switch key {
			case "memory":
				opts.Memory = val
			case "runtime":
				opts.Runtime = val
			case "type_name":
				opts.TypeName = val
			}
		case "use_copy":
			opts.UseCopy = true
		case "trace":
			if _, err := p.expect(token.LPAREN); err != nil {
				return err
			}
			arg, err := p.expect(token.IDENT)
			if err != nil {
				return err
			}
			if arg != "ignore" {
				p.i--
				return p.errorf("unsupported option for trace attribute: %q", arg)
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return err
			}
			opts.TraceIgnore = true
		default:
			p.i--
			return p.errorf("unsupported mortar attribute %q", key)
		}
		if !p.done() {
			if _, err := p.expect(token.COMMA); err != nil {
				return err
			}
		}
	}
	return nil
}

// fieldIgnored reports whether a struct tag carries mortar:"trace(ignore)".
func fieldIgnored(tag string, pos token.Position) (bool, error) {
	val, ok := reflect.StructTag(tag).Lookup(tagKey)
	if !ok {
		return false, nil
	}
	var opts Options
	if err := parseOptions(val, pos, true, &opts); err != nil {
		return false, err
	}
	return opts.TraceIgnore, nil
}
