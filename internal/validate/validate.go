// Package validate re-checks canonical IR invariants without trusting the
// canonicalizer: hand-authored documents get the same scrutiny as compiled
// ones. Validation never panics for data-quality problems; everything is
// collected into a report.
package validate

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/kellegram/skematic/internal/canon"
	"github.com/kellegram/skematic/internal/ir"
)

// Issue codes (E200-E299). Warnings carry codes too so strict mode can
// promote them without losing identity.
const (
	ErrMalformedIR     = "E200" // input is not a structurally valid IR document
	ErrNodeMissingID   = "E201" // node without an id
	ErrDuplicateNodeID = "E202" // two nodes share an id
	ErrEdgeMissingRef  = "E203" // edge missing from/to
	ErrDanglingRef     = "E204" // edge endpoint does not resolve
	ErrBelowMin        = "E210" // numeric attribute below its _min companion
	ErrAboveMax        = "E211" // numeric attribute above its _max companion
	ErrNotInEnum       = "E212" // attribute value not in its _enum companion
	WarnBadDateTime    = "E220" // date-time attribute fails the ISO-8601 pattern
)

// Issue is one validation finding.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Field, i.Message)
}

// Report is the outcome of validating one document.
type Report struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Options configures validation.
type Options struct {
	// Strict promotes every warning into an error before computing Valid.
	Strict bool
}

// Validate checks a document. It accepts either a *ir.Document or a loosely
// decoded value (the hand-authored path); structurally malformed input
// yields a single-error report with Valid false rather than an error return.
func Validate(v any, opts Options) Report {
	switch doc := v.(type) {
	case *ir.Document:
		return validateDocument(doc, opts)
	case ir.Document:
		return validateDocument(&doc, opts)
	default:
		converted, err := ir.FromMap(v)
		if err != nil {
			return Report{
				Valid:  false,
				Errors: []Issue{{Code: ErrMalformedIR, Field: "document", Message: err.Error()}},
			}
		}
		return validateDocument(converted, opts)
	}
}

type checker struct {
	errors   []Issue
	warnings []Issue
}

func (c *checker) errf(code, field, format string, args ...any) {
	c.errors = append(c.errors, Issue{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) warnf(code, field, format string, args ...any) {
	c.warnings = append(c.warnings, Issue{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func validateDocument(doc *ir.Document, opts Options) Report {
	c := &checker{}

	seen := map[string]bool{}
	for i, node := range doc.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if node.ID == "" {
			c.errf(ErrNodeMissingID, field, "node has no id")
		} else if seen[node.ID] {
			c.errf(ErrDuplicateNodeID, field, "duplicate node id %q", node.ID)
		}
		seen[node.ID] = true
		c.checkAttrs(field, node.Attrs)
	}

	nodeIDs := doc.NodeIDs()
	for i, edge := range doc.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if edge.From == "" {
			c.errf(ErrEdgeMissingRef, field, "edge %q has no from endpoint", edge.ID)
		} else if !nodeIDs[edge.From] {
			c.errf(ErrDanglingRef, field, "edge %q: from %q does not resolve to a known node", edge.ID, edge.From)
		}
		if edge.To == "" {
			c.errf(ErrEdgeMissingRef, field, "edge %q has no to endpoint", edge.ID)
		} else if !nodeIDs[edge.To] {
			c.errf(ErrDanglingRef, field, "edge %q: to %q does not resolve to a known node", edge.ID, edge.To)
		}
		c.checkAttrs(field, edge.Attrs)
	}

	if opts.Strict {
		c.errors = append(c.errors, c.warnings...)
		c.warnings = nil
	}
	return Report{Valid: len(c.errors) == 0, Errors: c.errors, Warnings: c.warnings}
}

// checkAttrs applies sibling synthetic constraints: a numeric attribute k is
// bounded by k_min/k_max companions and restricted by a k_enum array
// companion; date-time attributes are re-checked against the ISO-8601
// pattern.
func (c *checker) checkAttrs(field string, attrs map[string]ir.Value) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := attrs[k]
		attrField := field + ".attrs." + k

		if dt, ok := v.(ir.DateTime); ok && !canon.IsDateTime(string(dt)) {
			c.warnf(WarnBadDateTime, attrField, "date-time %q does not match the ISO-8601 pattern", string(dt))
		}

		num, isNum := numericValue(v)
		if isNum {
			if minV, ok := numericAttr(attrs, k+"_min"); ok && num < minV {
				c.errf(ErrBelowMin, attrField, "value %v is below minimum %v", num, minV)
			}
			if maxV, ok := numericAttr(attrs, k+"_max"); ok && num > maxV {
				c.errf(ErrAboveMax, attrField, "value %v is above maximum %v", num, maxV)
			}
		}

		if enum, ok := attrs[k+"_enum"].(ir.Array); ok {
			if !memberOf(v, enum) {
				c.errf(ErrNotInEnum, attrField, "value %v is not a member of %s_enum", v.Interface(), k)
			}
		}
	}
}

func numericValue(v ir.Value) (float64, bool) {
	switch n := v.(type) {
	case ir.Int:
		return float64(n), true
	case ir.Float:
		return float64(n), true
	default:
		return 0, false
	}
}

func numericAttr(attrs map[string]ir.Value, key string) (float64, bool) {
	v, ok := attrs[key]
	if !ok {
		return 0, false
	}
	return numericValue(v)
}

func memberOf(v ir.Value, enum ir.Array) bool {
	want := v.Interface()
	for _, candidate := range enum {
		if equalLoose(want, candidate.Interface()) {
			return true
		}
	}
	return false
}

// equalLoose compares values with numeric widening so 3 matches 3.0.
// Containers compare structurally; a == b would panic on slice and map
// dynamic types.
func equalLoose(a, b any) bool {
	if af, ok := looseFloat(a); ok {
		if bf, ok := looseFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func looseFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
