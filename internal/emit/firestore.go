package emit

import (
	"fmt"
	"strings"

	"github.com/kellegram/skematic/internal/ir"
)

// firestoreBackend emits a plain TypeScript interface plus a paired
// FirestoreDataConverter per entity. Writes pass document data through
// unchanged; reads cast the snapshot back into the interface shape.
type firestoreBackend struct{}

func (b *firestoreBackend) Name() string { return "firestore" }

func (b *firestoreBackend) Emit(doc *ir.Document) (string, error) {
	var sb strings.Builder
	sb.WriteString("// Code generated by skematic. DO NOT EDIT.\n")
	sb.WriteString(`import { Timestamp, QueryDocumentSnapshot, SnapshotOptions } from "firebase/firestore";`)
	sb.WriteString("\n")

	for _, e := range Entities(doc) {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "export interface %s {\n", e.Name)
		for _, f := range e.Fields {
			tsType, err := firestoreType(f)
			if err != nil {
				return "", fmt.Errorf("backend firestore: entity %s field %s: %w", e.Name, f.Name, err)
			}
			opt := ""
			if !f.Required {
				opt = "?"
			}
			if f.Nullable {
				tsType += " | null"
			}
			fmt.Fprintf(&sb, "  %s%s: %s;\n", f.Name, opt, tsType)
		}
		sb.WriteString("}\n\n")

		converter := lowerFirst(e.Name) + "Converter"
		fmt.Fprintf(&sb, "export const %s = {\n", converter)
		fmt.Fprintf(&sb, "  toFirestore: (value: %s) => ({ ...value }),\n", e.Name)
		sb.WriteString("  fromFirestore: (snapshot: QueryDocumentSnapshot, options: SnapshotOptions) =>\n")
		fmt.Fprintf(&sb, "    snapshot.data(options) as %s,\n", e.Name)
		sb.WriteString("};\n")
	}
	return sb.String(), nil
}

// firestoreType maps a field onto its document-store TypeScript type:
// numerics collapse to number, identifiers and strings to string, date-time
// to the platform Timestamp, relations to reference-id strings.
func firestoreType(f Field) (string, error) {
	switch f.Type {
	case TypeString, TypeEmail, TypeUUID:
		return "string", nil
	case TypeInteger, TypeNumber:
		return "number", nil
	case TypeBoolean:
		return "boolean", nil
	case TypeTimestamp:
		return "Timestamp", nil
	case TypeEnum:
		return enumUnion(f.Enum), nil
	case TypeArray:
		item, err := firestoreType(Field{Type: f.Items})
		if err != nil {
			return "", err
		}
		return item + "[]", nil
	case TypeRef:
		if f.Many {
			return "string[]", nil
		}
		return "string", nil
	default:
		return "", fmt.Errorf("unsupported field type %q", f.Type)
	}
}

func enumUnion(values []any) string {
	if len(values) == 0 {
		return "never"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = tsLiteral(v)
	}
	return strings.Join(parts, " | ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
