package formats

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
)

type bibtexCodec struct{}

// Decode parses a BibTeX database. The entry type becomes ENTRYTYPE, the
// cite key becomes ID and field names are lowercased, since BibTeX treats
// them case-insensitively. Values are kept exactly as written between
// their delimiters, whitespace and inner braces included. @string macros
// are expanded and @comment and @preamble blocks are skipped.
func (bibtexCodec) Decode(r io.Reader) ([]bibliography.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}
	p := &bibParser{src: data, line: 1, macros: make(map[string]string)}
	return p.parse()
}

// Encode writes one @type{ID, ...} entry per record with fields sorted by
// name and every value brace-delimited verbatim. Records without an entry
// type are written as @misc. A record that BibTeX cannot hold is a
// *errors.ValidationError: a cite key containing a delimiter, a field
// name that is not an identifier, or a value whose braces do not balance.
func (bibtexCodec) Encode(w io.Writer, records []bibliography.Record) error {
	var b bytes.Buffer
	for i, rec := range records {
		if err := checkEntry(rec); err != nil {
			return err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		typ := rec[constants.FieldEntryType]
		if typ == "" {
			typ = "misc"
		}
		fmt.Fprintf(&b, "@%s{%s", typ, rec.ID())

		for _, field := range rec.Fields() {
			if field == constants.FieldEntryType || field == constants.FieldID {
				continue
			}
			fmt.Fprintf(&b, ",\n %s = {%s}", field, rec[field])
		}
		b.WriteString("\n}\n")
	}
	if _, err := w.Write(b.Bytes()); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}

func checkEntry(rec bibliography.Record) error {
	typ := rec[constants.FieldEntryType]
	if typ != "" && !isIdent(typ) {
		return errors.NewValidationError(constants.FieldEntryType, typ,
			fmt.Sprintf("entry %q: entry type is not a BibTeX identifier", rec.ID()))
	}
	id := rec.ID()
	if strings.ContainsAny(id, ",{}()\"\n") || strings.TrimSpace(id) != id {
		return errors.NewValidationError(constants.FieldID, id, "cite key cannot be written in BibTeX")
	}
	for _, field := range rec.Fields() {
		if field == constants.FieldEntryType || field == constants.FieldID {
			continue
		}
		if !isIdent(field) {
			return errors.NewValidationError(field, nil,
				fmt.Sprintf("entry %q: field name is not a BibTeX identifier", id))
		}
		if !balanced(rec[field]) {
			return errors.NewValidationError(field, rec[field],
				fmt.Sprintf("entry %q: braces do not balance", id))
		}
	}
	return nil
}

// balanced reports whether every brace in v closes in order. BibTeX
// counts braces without regard to backslashes.
func balanced(v string) bool {
	depth := 0
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

type bibParser struct {
	src    []byte
	pos    int
	line   int
	macros map[string]string
}

func (p *bibParser) parse() ([]bibliography.Record, error) {
	records := []bibliography.Record{}
	for {
		i := bytes.IndexByte(p.src[p.pos:], '@')
		if i < 0 {
			return records, nil
		}
		p.advance(i + 1)

		// Text outside entries is a comment, including stray '@'.
		typ := strings.ToLower(p.ident())
		p.skipSpace()
		if typ == "" || p.eof() || (p.peek() != '{' && p.peek() != '(') {
			continue
		}
		closer, err := p.open()
		if err != nil {
			return nil, err
		}

		switch typ {
		case "comment", "preamble":
			if err := p.skipGroup(closer); err != nil {
				return nil, err
			}
		case "string":
			if err := p.macro(closer); err != nil {
				return nil, err
			}
		default:
			rec, err := p.entry(typ, closer)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
}

func (p *bibParser) entry(typ string, closer byte) (bibliography.Record, error) {
	rec := bibliography.Record{constants.FieldEntryType: typ}

	p.skipSpace()
	start := p.pos
	for !p.eof() && p.peek() != ',' && p.peek() != closer {
		p.advance(1)
	}
	if p.eof() {
		return nil, p.errorf("unterminated @%s entry", typ)
	}
	if id := strings.TrimSpace(string(p.src[start:p.pos])); id != "" {
		rec[constants.FieldID] = id
	}

	for {
		if p.peek() == closer {
			p.advance(1)
			return rec, nil
		}
		p.advance(1) // ','
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated entry %q", rec.ID())
		}
		if p.peek() == closer {
			continue
		}

		name := strings.ToLower(p.ident())
		if name == "" {
			return nil, p.errorf("entry %q: expected field name, found %q", rec.ID(), p.peek())
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		value, err := p.value()
		if err != nil {
			return nil, err
		}
		rec[name] = value

		p.skipSpace()
		if p.eof() || (p.peek() != ',' && p.peek() != closer) {
			return nil, p.errorf("entry %q: expected ',' or %q after field %s", rec.ID(), closer, name)
		}
	}
}

func (p *bibParser) macro(closer byte) error {
	p.skipSpace()
	name := strings.ToLower(p.ident())
	if name == "" {
		return p.errorf("@string: expected macro name")
	}
	if err := p.expect('='); err != nil {
		return err
	}
	value, err := p.value()
	if err != nil {
		return err
	}
	p.macros[name] = value
	p.skipSpace()
	if p.eof() || p.peek() != closer {
		return p.errorf("@string %s: expected %q", name, closer)
	}
	p.advance(1)
	return nil
}

// value reads a field value: braced, quoted, numeric or a macro name,
// possibly concatenated with '#'.
func (p *bibParser) value() (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.eof() {
			return "", p.errorf("unexpected end of input in field value")
		}
		switch c := p.peek(); {
		case c == '{':
			s, err := p.delimited('{', '}')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case c == '"':
			s, err := p.delimited('"', '"')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case isIdentByte(c):
			word := p.ident()
			if m, ok := p.macros[strings.ToLower(word)]; ok {
				word = m
			}
			b.WriteString(word)
		default:
			return "", p.errorf("expected field value, found %q", c)
		}
		p.skipSpace()
		if p.eof() || p.peek() != '#' {
			return b.String(), nil
		}
		p.advance(1)
	}
}

// delimited reads from an opening delimiter to its matching closer at
// brace depth zero and returns the text in between unchanged.
func (p *bibParser) delimited(open, closer byte) (string, error) {
	startLine := p.line
	p.advance(1)
	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			s := string(p.src[start:p.pos])
			p.advance(1)
			return s, nil
		}
		p.advance(1)
	}
	p.line = startLine
	return "", p.errorf("unterminated %c-delimited value", open)
}

func (p *bibParser) skipGroup(closer byte) error {
	startLine := p.line
	depth := 0
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			p.advance(1)
			return nil
		}
		p.advance(1)
	}
	p.line = startLine
	return p.errorf("unterminated block")
}

func (p *bibParser) open() (byte, error) {
	if p.eof() {
		return 0, p.errorf("unexpected end of input after '@'")
	}
	switch p.peek() {
	case '{':
		p.advance(1)
		return '}', nil
	case '(':
		p.advance(1)
		return ')', nil
	default:
		return 0, p.errorf("expected '{' or '(', found %q", p.peek())
	}
}

func (p *bibParser) expect(c byte) error {
	p.skipSpace()
	if p.eof() || p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.advance(1)
	return nil
}

func (p *bibParser) ident() string {
	start := p.pos
	for !p.eof() && isIdentByte(p.peek()) {
		p.advance(1)
	}
	return string(p.src[start:p.pos])
}

func isIdentByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c >= 0x80:
		return true
	}
	return strings.IndexByte("_-:.+/'", c) >= 0
}

func (p *bibParser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r', '\n':
			p.advance(1)
		default:
			return
		}
	}
}

func (p *bibParser) advance(n int) {
	end := min(p.pos+n, len(p.src))
	p.line += bytes.Count(p.src[p.pos:end], []byte{'\n'})
	p.pos = end
}

func (p *bibParser) peek() byte { return p.src[p.pos] }

func (p *bibParser) eof() bool { return p.pos >= len(p.src) }

func (p *bibParser) errorf(format string, args ...any) error {
	return &errors.ParseError{
		Format:  string(BibTeX),
		Line:    p.line,
		Message: fmt.Sprintf(format, args...),
		Err:     errors.ErrInvalidInput,
	}
}
