package emit

import (
	"sort"
	"strings"

	"github.com/kellegram/skematic/internal/ir"
)

// FieldType is the backend-facing classification of one entity field.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeEmail     FieldType = "email"
	TypeUUID      FieldType = "uuid"
	TypeInteger   FieldType = "integer"
	TypeNumber    FieldType = "number"
	TypeBoolean   FieldType = "boolean"
	TypeTimestamp FieldType = "timestamp"
	TypeArray     FieldType = "array"
	TypeEnum      FieldType = "enum"
	TypeRef       FieldType = "ref"
)

// Entity is the derived view backends consume. The canonical IR stays a
// generic node/edge graph; this translation is one-way and deterministic:
// every node becomes an entity, edges become relation fields on their from
// entity.
type Entity struct {
	ID     string
	Name   string // exported type name, PascalCased
	Fields []Field
}

// Field is one emitted entity field with its modifiers. Modifier emission
// order is fixed: base type, then optional, then nullable, then default.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Nullable bool
	Default  any       // nil means no default
	Min, Max *float64  // numeric bounds
	Enum     []any     // fixed value list for TypeEnum
	Items    FieldType // element type for TypeArray
	Ref      string    // referenced entity name for TypeRef
	Many     bool      // to-many relation
}

// Entities derives the backend view from a canonical document, in input
// (node) order. Fields come from a node's `fields` attribute when present,
// otherwise from its scalar attributes; `_min`/`_max`/`_enum` companion
// attributes fold into their base field instead of becoming fields of their
// own.
func Entities(doc *ir.Document) []Entity {
	names := make(map[string]string, len(doc.Nodes)) // node id -> entity name
	for _, n := range doc.Nodes {
		names[n.ID] = entityName(n)
	}

	out := make([]Entity, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		e := Entity{ID: n.ID, Name: names[n.ID]}
		if fields, ok := n.Attrs["fields"].(ir.Array); ok {
			e.Fields = declaredFields(fields)
		} else {
			e.Fields = attrFields(n.Attrs)
		}
		for _, edge := range doc.Edges {
			if edge.From != n.ID {
				continue
			}
			e.Fields = append(e.Fields, relationField(edge, names))
		}
		out = append(out, e)
	}
	return out
}

func entityName(n ir.Node) string {
	if name, ok := n.Attrs["name"].(ir.String); ok && name != "" {
		return pascal(string(name))
	}
	return pascal(n.ID)
}

// declaredFields reads an explicit fields array: objects carrying name,
// type, and optional required/nullable/default/min/max/enum/items keys.
func declaredFields(fields ir.Array) []Field {
	out := make([]Field, 0, len(fields))
	for _, raw := range fields {
		obj, ok := raw.(ir.Object)
		if !ok {
			continue
		}
		f := Field{Required: true}
		if name, ok := obj["name"]; ok {
			f.Name, _ = name.Interface().(string)
		}
		if f.Name == "" {
			continue
		}
		declared := ""
		if typ, ok := obj["type"]; ok {
			declared, _ = typ.Interface().(string)
		}
		f.Type = normalizeType(declared)
		if req, ok := obj["required"].(ir.Bool); ok {
			f.Required = bool(req)
		}
		if nul, ok := obj["nullable"].(ir.Bool); ok {
			f.Nullable = bool(nul)
		}
		if def, ok := obj["default"]; ok {
			f.Default = def.Interface()
		}
		if minV, ok := numeric(obj["min"]); ok {
			f.Min = &minV
		}
		if maxV, ok := numeric(obj["max"]); ok {
			f.Max = &maxV
		}
		if enum, ok := obj["enum"].(ir.Array); ok {
			f.Type = TypeEnum
			f.Enum = enumValues(enum)
		}
		if f.Type == TypeArray {
			f.Items = TypeString
			if items, ok := obj["items"]; ok {
				if s, ok := items.Interface().(string); ok {
					f.Items = normalizeType(s)
				}
			}
		}
		out = append(out, f)
	}
	return out
}

// attrFields derives fields from the node's own typed attributes, sorted by
// name for deterministic output.
func attrFields(attrs map[string]ir.Value) []Field {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k == "name" || isCompanion(k, attrs) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		f, ok := fieldFromValue(k, attrs[k])
		if !ok {
			continue
		}
		if minV, ok := numeric(attrs[k+"_min"]); ok {
			f.Min = &minV
		}
		if maxV, ok := numeric(attrs[k+"_max"]); ok {
			f.Max = &maxV
		}
		if enum, ok := attrs[k+"_enum"].(ir.Array); ok {
			f.Type = TypeEnum
			f.Enum = enumValues(enum)
		}
		out = append(out, f)
	}
	return out
}

func fieldFromValue(name string, v ir.Value) (Field, bool) {
	f := Field{Name: name, Required: true}
	switch val := v.(type) {
	case ir.String:
		f.Type = TypeString
		if strings.Contains(string(val), "@") {
			f.Type = TypeEmail
		}
	case ir.UUID:
		f.Type = TypeUUID
	case ir.DateTime:
		f.Type = TypeTimestamp
	case ir.Int:
		f.Type = TypeInteger
	case ir.Float:
		f.Type = TypeNumber
	case ir.Bool:
		f.Type = TypeBoolean
	case ir.Array:
		f.Type = TypeArray
		f.Items = TypeString
		if len(val) > 0 {
			if item, ok := fieldFromValue(name, val[0]); ok && item.Type != TypeArray {
				f.Items = item.Type
			}
		}
	case ir.Null:
		f.Type = TypeString
		f.Nullable = true
		f.Required = false
	default:
		// Objects and unions have no field rendering in either backend.
		return Field{}, false
	}
	return f, true
}

func relationField(edge ir.Edge, names map[string]string) Field {
	name := edge.Rel
	if name == "" {
		name = edge.To
	}
	ref, ok := names[edge.To]
	if !ok {
		ref = pascal(edge.To)
	}
	many := false
	if card, ok := edge.Attrs["cardinality"]; ok {
		s, _ := card.Interface().(string)
		many = s == "many"
	}
	return Field{Name: name, Type: TypeRef, Required: true, Ref: ref, Many: many}
}

// isCompanion reports whether key is a _min/_max/_enum sibling of another
// present attribute.
func isCompanion(key string, attrs map[string]ir.Value) bool {
	for _, suffix := range []string{"_min", "_max", "_enum"} {
		base, found := strings.CutSuffix(key, suffix)
		if found && base != "" {
			if _, ok := attrs[base]; ok {
				return true
			}
		}
	}
	return false
}

func normalizeType(declared string) FieldType {
	switch strings.ToLower(declared) {
	case "uuid":
		return TypeUUID
	case "email":
		return TypeEmail
	case "int", "integer":
		return TypeInteger
	case "float", "number", "double":
		return TypeNumber
	case "bool", "boolean":
		return TypeBoolean
	case "date", "datetime", "date-time", "timestamp":
		return TypeTimestamp
	case "array", "list":
		return TypeArray
	default:
		return TypeString
	}
}

func numeric(v ir.Value) (float64, bool) {
	switch n := v.(type) {
	case ir.Int:
		return float64(n), true
	case ir.Float:
		return float64(n), true
	default:
		return 0, false
	}
}

func enumValues(arr ir.Array) []any {
	out := make([]any, len(arr))
	for i, v := range arr {
		out[i] = v.Interface()
	}
	return out
}

// pascal converts snake/kebab/lower names to PascalCase type names.
func pascal(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}
