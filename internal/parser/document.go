package parser

import (
	"fmt"

	"github.com/kellegram/skematic/internal/lexer"
)

// Document is the raw AST of one schema source. It is produced once per
// Parse call and discarded after canonicalization.
type Document struct {
	Meta  map[string]any
	Nodes []RawEntry
	Edges []RawEntry
}

// RawEntry is one node or edge entry as written by the author. Common
// synonyms are unified at attach time (name→id, src/source→from,
// dst/target→to); everything the parser does not recognize lands in Attrs
// untouched. Fields the author omitted are empty strings.
type RawEntry struct {
	ID    string
	Type  string
	From  string
	To    string
	Rel   string
	Attrs map[string]any
}

// ParseError is fatal: the parser does not attempt recovery within a
// document.
type ParseError struct {
	Expected string
	Got      lexer.Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// idSynonyms etc. map author-facing spellings onto the unified entry fields.
var (
	idSynonyms   = []string{"id", "name"}
	fromSynonyms = []string{"from", "src", "source"}
	toSynonyms   = []string{"to", "dst", "target"}
)

// unifyEntry folds a parsed key/value object into a RawEntry. isEdge selects
// whether endpoint synonyms are recognized.
func unifyEntry(obj map[string]any, isEdge bool) RawEntry {
	entry := RawEntry{Attrs: map[string]any{}}

	take := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := obj[k]; ok {
				delete(obj, k)
				return scalarString(v), true
			}
		}
		return "", false
	}

	entry.ID, _ = take(idSynonyms...)
	entry.Type, _ = take("type")
	if isEdge {
		entry.From, _ = take(fromSynonyms...)
		entry.To, _ = take(toSynonyms...)
		entry.Rel, _ = take("rel")
	}

	// An explicit attrs object merges rather than nesting.
	if v, ok := obj["attrs"]; ok {
		delete(obj, "attrs")
		if m, ok := v.(map[string]any); ok {
			for k, av := range m {
				entry.Attrs[k] = av
			}
		} else {
			entry.Attrs["attrs"] = v
		}
	}
	for k, v := range obj {
		entry.Attrs[k] = v
	}
	return entry
}

// scalarString renders an id/endpoint value the way the author wrote it.
func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
