// Package lexer turns schema DSL source text into a flat token stream.
//
// Whitespace is skipped, newlines are significant (the parser uses them as
// statement boundaries), and `#`/`//` comments run to end of line. Lexing is
// a pure function of the input text.
package lexer

import "strings"

const punctChars = ":-{}[],()"

// Tokenize lexes text into an ordered token slice terminated by an EOF token.
// The first unrecognized character aborts with a *LexError.
func Tokenize(text string) ([]Token, error) {
	lx := &lexer{src: []rune(text), line: 1, col: 1}
	return lx.run()
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
	toks []Token
}

func (lx *lexer) run() ([]Token, error) {
	for !lx.eof() {
		c := lx.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			lx.advance()
		case c == '\n':
			lx.emit(NEWLINE, "\n", lx.line, lx.col)
			lx.advance()
		case c == '#' || (c == '/' && lx.peekAt(1) == '/'):
			lx.skipComment()
		case c == '"' || c == '\'':
			if err := lx.lexString(); err != nil {
				return nil, err
			}
		case isDigit(c) || (c == '-' && isDigit(lx.peekAt(1))):
			lx.lexNumber()
		case strings.ContainsRune(punctChars, c):
			lx.emit(PUNCT, string(c), lx.line, lx.col)
			lx.advance()
		case isIdentStart(c):
			lx.lexIdent()
		default:
			return nil, &LexError{Char: c, Line: lx.line, Col: lx.col}
		}
	}
	lx.emit(EOF, "", lx.line, lx.col)
	return lx.toks, nil
}

func (lx *lexer) lexString() error {
	quote := lx.peek()
	line, col := lx.line, lx.col
	lx.advance() // opening quote
	var sb strings.Builder
	for {
		if lx.eof() {
			return &LexError{Char: quote, Line: line, Col: col, Reason: "unterminated string starting with"}
		}
		c := lx.peek()
		if c == quote {
			lx.advance()
			break
		}
		if c == '\\' {
			lx.advance()
			if lx.eof() {
				return &LexError{Char: quote, Line: line, Col: col, Reason: "unterminated string starting with"}
			}
			esc := lx.peek()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(esc)
			}
			lx.advance()
			continue
		}
		sb.WriteRune(c)
		lx.advance()
	}
	lx.emit(STRING, sb.String(), line, col)
	return nil
}

func (lx *lexer) lexNumber() {
	line, col := lx.line, lx.col
	var sb strings.Builder
	if lx.peek() == '-' {
		sb.WriteRune('-')
		lx.advance()
	}
	sawDot := false
	for !lx.eof() {
		c := lx.peek()
		if isDigit(c) {
			sb.WriteRune(c)
			lx.advance()
			continue
		}
		if c == '.' && !sawDot && isDigit(lx.peekAt(1)) {
			sawDot = true
			sb.WriteRune('.')
			lx.advance()
			continue
		}
		break
	}
	lx.emit(NUMBER, sb.String(), line, col)
}

func (lx *lexer) lexIdent() {
	line, col := lx.line, lx.col
	var sb strings.Builder
	sb.WriteRune(lx.peek())
	lx.advance()
	for !lx.eof() && isIdentPart(lx.peek()) {
		sb.WriteRune(lx.peek())
		lx.advance()
	}
	word := sb.String()
	switch word {
	case "true", "false":
		lx.emit(BOOLEAN, word, line, col)
	case "null":
		lx.emit(NULL, word, line, col)
	default:
		lx.emit(IDENT, word, line, col)
	}
}

func (lx *lexer) skipComment() {
	for !lx.eof() && lx.peek() != '\n' {
		lx.advance()
	}
}

func (lx *lexer) emit(kind Kind, value string, line, col int) {
	lx.toks = append(lx.toks, Token{Kind: kind, Value: value, Line: line, Col: col})
}

func (lx *lexer) eof() bool { return lx.pos >= len(lx.src) }

func (lx *lexer) peek() rune { return lx.src[lx.pos] }

func (lx *lexer) peekAt(n int) rune {
	if lx.pos+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+n]
}

func (lx *lexer) advance() {
	if lx.src[lx.pos] == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	lx.pos++
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isIdentStart(c rune) bool {
	return c == '_' || c == '@' || c == '$' || c == '%' || c == '&' || c == '+' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return c == '_' || c == '-' || isDigit(c) ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
