// Package parser builds a raw Document AST from schema DSL source.
//
// The grammar is line-oriented: top-level `key:` pairs introduce either a
// `-`-prefixed list block (for `nodes` and `edges`) or a single value that
// lands in the document's meta map. Inline arrays and objects follow JSON
// shape, with commas optional between elements. Lines that match nothing are
// skipped; token-expectation mismatches inside a recognized construct are
// fatal.
package parser

import (
	"strconv"
	"strings"

	"github.com/kellegram/skematic/internal/lexer"
)

// Parse lexes and parses source text into a Document.
func Parse(text string) (*Document, error) {
	toks, err := lexer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseDocument()
}

type parser struct {
	toks []lexer.Token
	pos  int
}

func (p *parser) parseDocument() (*Document, error) {
	doc := &Document{Meta: map[string]any{}}
	for {
		p.skipNewlines()
		if p.peek().Kind == lexer.EOF {
			return doc, nil
		}
		tok := p.peek()
		if tok.Kind == lexer.IDENT && p.peekAt(1).Kind == lexer.PUNCT && p.peekAt(1).Value == ":" {
			key := tok.Value
			p.advance() // key
			p.advance() // colon
			switch key {
			case "nodes":
				entries, err := p.parseListBlock(false)
				if err != nil {
					return nil, err
				}
				doc.Nodes = append(doc.Nodes, entries...)
			case "edges":
				entries, err := p.parseListBlock(true)
				if err != nil {
					return nil, err
				}
				doc.Edges = append(doc.Edges, entries...)
			default:
				if err := p.parseMetaValue(doc, key); err != nil {
					return nil, err
				}
			}
			continue
		}
		// Stray content outside a recognized top-level key.
		p.skipLine()
	}
}

// parseListBlock consumes a run of `-`-prefixed entries. Each entry is
// either a braced object or a run of inline key:value pairs ending at the
// newline.
func (p *parser) parseListBlock(isEdge bool) ([]RawEntry, error) {
	var entries []RawEntry
	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Kind != lexer.PUNCT || tok.Value != "-" {
			return entries, nil
		}
		p.advance() // dash
		obj, err := p.parseEntryObject()
		if err != nil {
			return nil, err
		}
		entries = append(entries, unifyEntry(obj, isEdge))
	}
}

func (p *parser) parseEntryObject() (map[string]any, error) {
	if tok := p.peek(); tok.Kind == lexer.PUNCT && tok.Value == "{" {
		return p.parseObject()
	}
	obj := map[string]any{}
	for {
		tok := p.peek()
		if tok.Kind == lexer.NEWLINE || tok.Kind == lexer.EOF {
			return obj, nil
		}
		if tok.Kind == lexer.PUNCT && tok.Value == "," {
			p.advance()
			continue
		}
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key] = val
	}
}

// parseMetaValue captures `key: <value>` at document scope. A newline right
// after the colon opens a nested block of key:value lines; the block ends at
// a blank line, a list-block key, a dash, or EOF. The `meta` key merges an
// object value into the document meta instead of nesting it.
func (p *parser) parseMetaValue(doc *Document, key string) error {
	var val any
	if p.peek().Kind == lexer.NEWLINE {
		block, err := p.parseNestedBlock()
		if err != nil {
			return err
		}
		val = block
	} else {
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		val = v
	}
	if key == "meta" {
		if m, ok := val.(map[string]any); ok {
			for k, v := range m {
				doc.Meta[k] = v
			}
			return nil
		}
	}
	doc.Meta[key] = val
	return nil
}

func (p *parser) parseNestedBlock() (map[string]any, error) {
	block := map[string]any{}
	for {
		// A blank line (two consecutive newlines) terminates the block.
		if p.peek().Kind == lexer.NEWLINE && p.peekAt(1).Kind == lexer.NEWLINE {
			p.advance()
			return block, nil
		}
		p.skipNewlines()
		tok := p.peek()
		if tok.Kind != lexer.IDENT || p.peekAt(1).Kind != lexer.PUNCT || p.peekAt(1).Value != ":" {
			return block, nil
		}
		if tok.Value == "nodes" || tok.Value == "edges" {
			return block, nil
		}
		key := tok.Value
		p.advance()
		p.advance()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		block[key] = val
	}
}

// parseValue parses one polymorphic value: scalar literal, bracketed array,
// braced object, or a bare identifier treated as a string scalar.
func (p *parser) parseValue() (any, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.STRING:
		p.advance()
		return tok.Value, nil
	case lexer.NUMBER:
		p.advance()
		if strings.Contains(tok.Value, ".") {
			f, err := strconv.ParseFloat(tok.Value, 64)
			if err != nil {
				return nil, &ParseError{Expected: "NUMBER", Got: tok}
			}
			return f, nil
		}
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, &ParseError{Expected: "NUMBER", Got: tok}
		}
		return n, nil
	case lexer.BOOLEAN:
		p.advance()
		return tok.Value == "true", nil
	case lexer.NULL:
		p.advance()
		return nil, nil
	case lexer.IDENT:
		p.advance()
		return tok.Value, nil
	case lexer.PUNCT:
		switch tok.Value {
		case "[":
			return p.parseArray()
		case "{":
			return p.parseObject()
		}
	}
	return nil, &ParseError{Expected: "value", Got: tok}
}

func (p *parser) parseArray() (any, error) {
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	arr := []any{}
	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Kind == lexer.PUNCT && tok.Value == "]" {
			p.advance()
			return arr, nil
		}
		if tok.Kind == lexer.PUNCT && tok.Value == "," {
			p.advance()
			continue
		}
		if tok.Kind == lexer.EOF {
			return nil, &ParseError{Expected: `PUNCT "]"`, Got: tok}
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
}

func (p *parser) parseObject() (map[string]any, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	obj := map[string]any{}
	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Kind == lexer.PUNCT && tok.Value == "}" {
			p.advance()
			return obj, nil
		}
		if tok.Kind == lexer.PUNCT && tok.Value == "," {
			p.advance()
			continue
		}
		if tok.Kind == lexer.EOF {
			return nil, &ParseError{Expected: `PUNCT "}"`, Got: tok}
		}
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		p.skipNewlines()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key] = val
	}
}

// parseKey accepts STRING or IDENT object keys.
func (p *parser) parseKey() (string, error) {
	tok := p.peek()
	if tok.Kind == lexer.STRING || tok.Kind == lexer.IDENT {
		p.advance()
		return tok.Value, nil
	}
	return "", &ParseError{Expected: "STRING or IDENT key", Got: tok}
}

func (p *parser) expectPunct(v string) error {
	tok := p.peek()
	if tok.Kind != lexer.PUNCT || tok.Value != v {
		return &ParseError{Expected: `PUNCT "` + v + `"`, Got: tok}
	}
	p.advance()
	return nil
}

func (p *parser) skipNewlines() {
	for p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
}

func (p *parser) skipLine() {
	for p.peek().Kind != lexer.NEWLINE && p.peek().Kind != lexer.EOF {
		p.advance()
	}
	if p.peek().Kind == lexer.NEWLINE {
		p.advance()
	}
}

func (p *parser) peek() lexer.Token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}
