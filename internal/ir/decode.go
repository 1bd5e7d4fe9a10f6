package ir

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DecodeJSON decodes a pre-built IR document from JSON. This is the
// alternate pipeline entry point: the result skips straight to validation
// and emission.
func DecodeJSON(data []byte) (*Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode IR JSON: %w", err)
	}
	return FromMap(raw)
}

// DecodeYAML decodes a pre-built IR document from YAML.
func DecodeYAML(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode IR YAML: %w", err)
	}
	return FromMap(raw)
}

// FromMap builds a Document from a loosely decoded value. Structural
// problems (not an object, missing or mistyped nodes/edges containers) are
// errors; attribute values may be in tagged {"type","value"} form or plain
// scalars.
func FromMap(raw any) (*Document, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("IR document must be an object, got %T", raw)
	}
	doc := &Document{}

	if metaRaw, ok := m["meta"]; ok && metaRaw != nil {
		meta, ok := metaRaw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("IR meta must be an object, got %T", metaRaw)
		}
		doc.Meta = meta
	}

	nodesRaw, ok := m["nodes"]
	if !ok {
		return nil, fmt.Errorf("IR document missing nodes container")
	}
	nodes, ok := nodesRaw.([]any)
	if !ok {
		return nil, fmt.Errorf("IR nodes must be an array, got %T", nodesRaw)
	}
	for i, n := range nodes {
		node, err := nodeFromAny(n)
		if err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	edgesRaw, ok := m["edges"]
	if !ok {
		return nil, fmt.Errorf("IR document missing edges container")
	}
	edges, ok := edgesRaw.([]any)
	if !ok {
		return nil, fmt.Errorf("IR edges must be an array, got %T", edgesRaw)
	}
	for i, e := range edges {
		edge, err := edgeFromAny(e)
		if err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
		doc.Edges = append(doc.Edges, edge)
	}

	doc.Warnings = stringSlice(m["warnings"])
	doc.Errors = stringSlice(m["errors"])
	return doc, nil
}

func nodeFromAny(raw any) (Node, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Node{}, fmt.Errorf("node must be an object, got %T", raw)
	}
	node := Node{
		ID:   stringField(m, "id"),
		Type: stringField(m, "type"),
	}
	attrs, err := attrsFromAny(m["attrs"])
	if err != nil {
		return Node{}, err
	}
	node.Attrs = attrs
	return node, nil
}

func edgeFromAny(raw any) (Edge, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Edge{}, fmt.Errorf("edge must be an object, got %T", raw)
	}
	edge := Edge{
		ID:   stringField(m, "id"),
		From: stringField(m, "from"),
		To:   stringField(m, "to"),
		Rel:  stringField(m, "rel"),
	}
	attrs, err := attrsFromAny(m["attrs"])
	if err != nil {
		return Edge{}, err
	}
	edge.Attrs = attrs
	return edge, nil
}

func attrsFromAny(raw any) (map[string]Value, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("attrs must be an object, got %T", raw)
	}
	attrs := make(map[string]Value, len(m))
	for k, v := range m {
		val, err := valueFromTagged(v)
		if err != nil {
			return nil, fmt.Errorf("attrs[%q]: %w", k, err)
		}
		attrs[k] = val
	}
	return attrs, nil
}

// valueFromTagged decodes {"type","value"} tagged form, falling back to
// plain Go-typed conversion for hand-authored documents.
func valueFromTagged(raw any) (Value, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return FromAny(raw)
	}
	typRaw, hasType := m["type"]
	payload, hasValue := m["value"]
	typ, typIsString := typRaw.(string)
	if !hasType || !hasValue || !typIsString {
		return FromAny(raw)
	}

	switch Kind(typ) {
	case KindNull:
		return Null{}, nil
	case KindString:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("string value must be a string, got %T", payload)
		}
		return String(s), nil
	case KindInteger:
		n, ok := intFromAny(payload)
		if !ok {
			return nil, fmt.Errorf("integer value must be a whole number, got %v", payload)
		}
		return Int(n), nil
	case KindNumber:
		switch f := payload.(type) {
		case float64:
			return Float(f), nil
		case int:
			return Float(float64(f)), nil
		case int64:
			return Float(float64(f)), nil
		}
		return nil, fmt.Errorf("number value must be numeric, got %T", payload)
	case KindBoolean:
		b, ok := payload.(bool)
		if !ok {
			return nil, fmt.Errorf("boolean value must be a bool, got %T", payload)
		}
		return Bool(b), nil
	case KindUUID:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("uuid value must be a string, got %T", payload)
		}
		return UUID(s), nil
	case KindDateTime:
		s, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("date-time value must be a string, got %T", payload)
		}
		return DateTime(s), nil
	case KindArray:
		elems, ok := payload.([]any)
		if !ok {
			return nil, fmt.Errorf("array value must be an array, got %T", payload)
		}
		arr := make(Array, len(elems))
		for i, e := range elems {
			val, err := valueFromTagged(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = val
		}
		return arr, nil
	case KindObject:
		fields, ok := payload.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("object value must be an object, got %T", payload)
		}
		obj := make(Object, len(fields))
		for k, e := range fields {
			val, err := valueFromTagged(e)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = val
		}
		return obj, nil
	case KindUnion:
		candidates, ok := payload.([]any)
		if !ok {
			return nil, fmt.Errorf("union value must be an array, got %T", payload)
		}
		return Union(candidates), nil
	default:
		return nil, fmt.Errorf("unknown value type %q", typ)
	}
}

func intFromAny(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func stringSlice(raw any) []string {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
