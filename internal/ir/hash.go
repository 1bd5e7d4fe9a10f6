package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDocument versions the content-addressed identity scheme so the
// algorithm can migrate without colliding with old hashes.
const DomainDocument = "skematic/document/v1"

// hashWithDomain computes SHA-256 over domain + 0x00 + data. The null byte
// separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentID computes the content-addressed identity of a canonical
// document. Warnings and errors are excluded: two compilations that produce
// the same graph share an identity even when one generated ids noisily.
func DocumentID(doc *Document) (string, error) {
	nodes := make([]any, len(doc.Nodes))
	for i, n := range doc.Nodes {
		nodes[i] = nodeCanonicalMap(n)
	}
	edges := make([]any, len(doc.Edges))
	for i, e := range doc.Edges {
		edges[i] = edgeCanonicalMap(e)
	}
	obj := map[string]any{
		"meta":  doc.Meta,
		"nodes": nodes,
		"edges": edges,
	}
	if doc.Meta == nil {
		obj["meta"] = map[string]any{}
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("DocumentID: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

func nodeCanonicalMap(n Node) map[string]any {
	m := map[string]any{"id": n.ID}
	if n.Type != "" {
		m["type"] = n.Type
	}
	if len(n.Attrs) > 0 {
		m["attrs"] = attrsCanonicalMap(n.Attrs)
	}
	return m
}

func edgeCanonicalMap(e Edge) map[string]any {
	m := map[string]any{"id": e.ID, "from": e.From, "to": e.To}
	if e.Rel != "" {
		m["rel"] = e.Rel
	}
	if len(e.Attrs) > 0 {
		m["attrs"] = attrsCanonicalMap(e.Attrs)
	}
	return m
}

// attrsCanonicalMap renders typed attributes in their tagged form so that
// two values differing only in inferred kind hash differently.
func attrsCanonicalMap(attrs map[string]Value) map[string]any {
	m := make(map[string]any, len(attrs))
	for k, v := range attrs {
		m[k] = map[string]any{
			"type":  string(v.Kind()),
			"value": v.Interface(),
		}
	}
	return m
}
