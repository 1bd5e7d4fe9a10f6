package ir

// Node is one canonical graph node. IDs are pairwise unique within a
// compilation; every attribute value is typed.
type Node struct {
	ID    string           `json:"id"`
	Type  string           `json:"type,omitempty"`
	Attrs map[string]Value `json:"attrs,omitempty"`
}

// Edge is one canonical directed edge. From and To should resolve to known
// node ids; a dangling endpoint is a canonicalization warning and a
// validation error.
type Edge struct {
	ID    string           `json:"id"`
	From  string           `json:"from"`
	To    string           `json:"to"`
	Rel   string           `json:"rel,omitempty"`
	Attrs map[string]Value `json:"attrs,omitempty"`
}

// Document is the immutable output of canonicalization. Warnings accumulate
// recoverable findings (generated ids, union choices, dangling references);
// Errors is populated only when a decoded document carried them.
type Document struct {
	Meta     map[string]any `json:"meta,omitempty"`
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Warnings []string       `json:"warnings,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

// NodeIDs returns the set of node ids for referential checks.
func (d *Document) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = true
	}
	return ids
}
