// Package canon transforms a parsed Document AST into canonical IR: stable
// ids, inferred attribute types, resolved union constructs, and referential
// lint warnings. Canonicalization is a pure transform with no I/O; the only
// injected collaborator is the id Generator.
package canon

import (
	"fmt"
	"sort"

	"github.com/kellegram/skematic/internal/ir"
	"github.com/kellegram/skematic/internal/parser"
)

// Options configures one canonicalization.
type Options struct {
	// Strict escalates every canonicalization warning into a fatal error.
	Strict bool
	// IDs supplies generated ids. Nil means a fresh wall-clock-seeded
	// generator; tests inject a pinned one.
	IDs *Generator
}

// StrictError is returned in strict mode when canonicalization would have
// recorded warnings.
type StrictError struct {
	Warnings []string
}

func (e *StrictError) Error() string {
	return fmt.Sprintf("strict mode: %d warning(s) escalated to errors; first: %s",
		len(e.Warnings), e.Warnings[0])
}

// Canonicalize produces the canonical IR for an AST. On structurally valid
// input it always succeeds in non-strict mode; findings accumulate as
// warnings on the document.
func Canonicalize(doc *parser.Document, opts Options) (*ir.Document, error) {
	gen := opts.IDs
	if gen == nil {
		gen = NewGenerator()
	}
	c := &canonicalizer{gen: gen, strict: opts.Strict}

	out := &ir.Document{Meta: doc.Meta}

	nodeIDs := map[string]bool{}
	for i, entry := range doc.Nodes {
		node, err := c.canonNode(i, entry, nodeIDs)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, node)
	}

	edgeIDs := map[string]bool{}
	for i, entry := range doc.Edges {
		edge, err := c.canonEdge(i, entry, edgeIDs, nodeIDs)
		if err != nil {
			return nil, err
		}
		out.Edges = append(out.Edges, edge)
	}

	c.lintBidirectional(out.Edges)

	out.Warnings = c.warnings
	if opts.Strict && len(c.warnings) > 0 {
		return nil, &StrictError{Warnings: c.warnings}
	}
	return out, nil
}

type canonicalizer struct {
	gen      *Generator
	strict   bool
	warnings []string
}

func (c *canonicalizer) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *canonicalizer) canonNode(i int, entry parser.RawEntry, seen map[string]bool) (ir.Node, error) {
	id, err := c.assignID("node", i, entry.ID, seen)
	if err != nil {
		return ir.Node{}, err
	}
	return ir.Node{
		ID:    id,
		Type:  entry.Type,
		Attrs: c.canonAttrs("node", id, entry.Attrs),
	}, nil
}

func (c *canonicalizer) canonEdge(i int, entry parser.RawEntry, seen, nodeIDs map[string]bool) (ir.Edge, error) {
	id, err := c.assignID("edge", i, entry.ID, seen)
	if err != nil {
		return ir.Edge{}, err
	}
	edge := ir.Edge{
		ID:    id,
		From:  entry.From,
		To:    entry.To,
		Rel:   entry.Rel,
		Attrs: c.canonAttrs("edge", id, entry.Attrs),
	}
	switch {
	case edge.From == "":
		c.warnf("edge %q has no from endpoint", id)
	case !nodeIDs[edge.From]:
		c.warnf("edge %q: from %q does not resolve to a known node", id, edge.From)
	}
	switch {
	case edge.To == "":
		c.warnf("edge %q has no to endpoint", id)
	case !nodeIDs[edge.To]:
		c.warnf("edge %q: to %q does not resolve to a known node", id, edge.To)
	}
	return edge, nil
}

// assignID fills in missing ids from the generator and resolves collisions:
// a warning plus rename in non-strict mode, a fatal error in strict mode.
func (c *canonicalizer) assignID(prefix string, index int, id string, seen map[string]bool) (string, error) {
	if id == "" {
		id = c.gen.NextID(prefix)
		c.warnf("%s at index %d has no id; generated %q", prefix, index, id)
	} else if seen[id] {
		if c.strict {
			return "", fmt.Errorf("duplicate %s id %q", prefix, id)
		}
		renamed := id
		for n := 2; seen[renamed]; n++ {
			renamed = fmt.Sprintf("%s_%d", id, n)
		}
		c.warnf("duplicate %s id %q renamed to %q", prefix, id, renamed)
		id = renamed
	}
	seen[id] = true
	return id, nil
}

// canonAttrs types every attribute value. Keys are processed in sorted
// order so warning output is deterministic.
func (c *canonicalizer) canonAttrs(kind, id string, attrs map[string]any) map[string]ir.Value {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]ir.Value, len(attrs))
	for _, k := range keys {
		out[k] = c.resolveAttr(kind, id, k, attrs[k])
	}
	return out
}

// resolveAttr applies the union-resolution policy to object-shaped values
// before falling through to plain inference:
//
//   - oneOf selects the first candidate only (information loss, warned)
//   - anyOf keeps every candidate verbatim as a union (no warning)
//   - allOf shallow-merges object candidates, rightmost key wins (warned)
func (c *canonicalizer) resolveAttr(kind, id, key string, v any) ir.Value {
	obj, ok := v.(map[string]any)
	if !ok {
		return InferValue(v)
	}

	if raw, ok := obj["oneOf"]; ok {
		if candidates, ok := raw.([]any); ok && len(candidates) > 0 {
			c.warnf("%s %q attr %q: oneOf collapsed to first of %d candidate(s)",
				kind, id, key, len(candidates))
			return InferValue(candidates[0])
		}
	}
	if raw, ok := obj["anyOf"]; ok {
		if candidates, ok := raw.([]any); ok && len(candidates) > 0 {
			return ir.Union(candidates)
		}
	}
	if raw, ok := obj["allOf"]; ok {
		if candidates, ok := raw.([]any); ok && len(candidates) > 0 {
			merged := map[string]any{}
			for _, cand := range candidates {
				if m, ok := cand.(map[string]any); ok {
					for k, mv := range m {
						merged[k] = mv
					}
				}
			}
			c.warnf("%s %q attr %q: allOf merged %d candidate(s)",
				kind, id, key, len(candidates))
			return InferValue(merged)
		}
	}
	return InferValue(v)
}

// lintBidirectional warns once per unordered pair of edges that point at
// each other (A→B and B→A both present).
func (c *canonicalizer) lintBidirectional(edges []ir.Edge) {
	seen := map[[2]string]string{}
	for _, e := range edges {
		if e.From == "" || e.To == "" || e.From == e.To {
			continue
		}
		if otherID, ok := seen[[2]string{e.To, e.From}]; ok {
			c.warnf("edges %q and %q form a bidirectional pair (%s↔%s)",
				otherID, e.ID, e.To, e.From)
			continue
		}
		if _, ok := seen[[2]string{e.From, e.To}]; !ok {
			seen[[2]string{e.From, e.To}] = e.ID
		}
	}
}
