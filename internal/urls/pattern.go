package urls

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type pieceKind int

const (
	pieceLiteral pieceKind = iota
	pieceParam
	pieceWildcard
)

type piece struct {
	kind pieceKind
	text string
}

// pattern is a compiled route template. ":name" captures one path segment,
// "*name" captures the remainder. Everything else matches literally.
type pattern struct {
	raw    string
	pieces []piece
	params []string
	re     *regexp.Regexp
}

func compileTemplate(raw string, terminal bool) (*pattern, error) {
	p := &pattern{raw: raw}
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			p.pieces = append(p.pieces, piece{kind: pieceLiteral, text: literal.String()})
			literal.Reset()
		}
	}
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch != ':' && ch != '*' {
			literal.WriteByte(ch)
			continue
		}
		end := i + 1
		for end < len(raw) && isNameByte(raw[end], end == i+1) {
			end++
		}
		name := raw[i+1 : end]
		if name == "" {
			return nil, fmt.Errorf("%w: %q has an unnamed parameter", ErrPatternInvalid, raw)
		}
		if ch == '*' && end != len(raw) {
			return nil, fmt.Errorf("%w: %q wildcard must be last", ErrPatternInvalid, raw)
		}
		for _, existing := range p.params {
			if existing == name {
				return nil, fmt.Errorf("%w: %q repeats parameter %s", ErrPatternInvalid, raw, name)
			}
		}
		flush()
		kind := pieceParam
		if ch == '*' {
			kind = pieceWildcard
		}
		p.pieces = append(p.pieces, piece{kind: kind, text: name})
		p.params = append(p.params, name)
		i = end - 1
	}
	flush()
	return p, p.compile(terminal)
}

func compileLiteral(raw string) (*pattern, error) {
	p := &pattern{raw: raw}
	if raw != "" {
		p.pieces = []piece{{kind: pieceLiteral, text: raw}}
	}
	return p, p.compile(false)
}

func (p *pattern) compile(terminal bool) error {
	var expr strings.Builder
	expr.WriteString("^")
	for _, pc := range p.pieces {
		switch pc.kind {
		case pieceLiteral:
			expr.WriteString(regexp.QuoteMeta(pc.text))
		case pieceParam:
			expr.WriteString("(?P<" + pc.text + ">[^/]+)")
		case pieceWildcard:
			expr.WriteString("(?P<" + pc.text + ">.+)")
		}
	}
	if terminal {
		expr.WriteString("$")
	}
	re, err := regexp.Compile(expr.String())
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrPatternInvalid, p.raw, err)
	}
	p.re = re
	return nil
}

// match consumes the pattern at the start of path and returns the rest.
func (p *pattern) match(path string, params map[string]string) (string, bool) {
	loc := p.re.FindStringSubmatchIndex(path)
	if loc == nil {
		return "", false
	}
	for i, name := range p.re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		value := path[loc[2*i]:loc[2*i+1]]
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		params[name] = value
	}
	return path[loc[1]:], true
}

func (p *pattern) expand(params map[string]string) (string, error) {
	var out strings.Builder
	for _, pc := range p.pieces {
		switch pc.kind {
		case pieceLiteral:
			out.WriteString(pc.text)
		case pieceParam:
			value, ok := params[pc.text]
			if !ok || value == "" {
				return "", fmt.Errorf("%w: %s", ErrParamMissing, pc.text)
			}
			if strings.Contains(value, "/") {
				return "", fmt.Errorf("%w: %s=%q", ErrParamInvalid, pc.text, value)
			}
			out.WriteString(url.PathEscape(value))
		case pieceWildcard:
			value, ok := params[pc.text]
			if !ok || value == "" {
				return "", fmt.Errorf("%w: %s", ErrParamMissing, pc.text)
			}
			out.WriteString(strings.TrimPrefix(value, "/"))
		}
	}
	return out.String(), nil
}

// urlkitPath renders the template in the ":name" form go-urlkit expects.
func (p *pattern) urlkitPath() string {
	var out strings.Builder
	for _, pc := range p.pieces {
		if pc.kind == pieceLiteral {
			out.WriteString(pc.text)
			continue
		}
		out.WriteString(":" + pc.text)
	}
	return out.String()
}

func isNameByte(b byte, first bool) bool {
	switch {
	case b == '_', b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return !first
	}
	return false
}
