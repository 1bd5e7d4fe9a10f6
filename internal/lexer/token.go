package lexer

import "fmt"

// Kind classifies a lexed token.
type Kind int

const (
	STRING Kind = iota
	NUMBER
	BOOLEAN
	NULL
	IDENT
	PUNCT
	NEWLINE
	EOF
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case STRING:
		return "STRING"
	case NUMBER:
		return "NUMBER"
	case BOOLEAN:
		return "BOOLEAN"
	case NULL:
		return "NULL"
	case IDENT:
		return "IDENT"
	case PUNCT:
		return "PUNCT"
	case NEWLINE:
		return "NEWLINE"
	case EOF:
		return "EOF"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a single lexed unit with its source position.
// Line and Col are 1-based.
type Token struct {
	Kind  Kind
	Value string
	Line  int
	Col   int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Kind, t.Value, t.Line, t.Col)
}

// LexError is fatal: lexing does not recover past the offending character.
type LexError struct {
	Char   rune
	Line   int
	Col    int
	Reason string // empty means "unexpected character"
}

func (e *LexError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unexpected character"
	}
	return fmt.Sprintf("%s %q at %d:%d", reason, e.Char, e.Line, e.Col)
}
