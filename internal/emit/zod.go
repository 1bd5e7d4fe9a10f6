package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kellegram/skematic/internal/ir"
)

// zodBackend emits a Zod runtime schema plus an inferred static type per
// entity. Relation fields use z.lazy so a schema may reference another
// schema declared later in the same file (or itself).
type zodBackend struct{}

func (z *zodBackend) Name() string { return "zod" }

func (z *zodBackend) Emit(doc *ir.Document) (string, error) {
	var sb strings.Builder
	sb.WriteString("// Code generated by skematic. DO NOT EDIT.\n")
	sb.WriteString(`import { z } from "zod";`)
	sb.WriteString("\n")

	for _, e := range Entities(doc) {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "export const %sSchema = z.object({\n", e.Name)
		for _, f := range e.Fields {
			expr, err := zodField(f)
			if err != nil {
				return "", fmt.Errorf("backend zod: entity %s field %s: %w", e.Name, f.Name, err)
			}
			fmt.Fprintf(&sb, "  %s: %s,\n", f.Name, expr)
		}
		sb.WriteString("});\n")
		fmt.Fprintf(&sb, "export type %s = z.infer<typeof %sSchema>;\n", e.Name, e.Name)
	}
	return sb.String(), nil
}

// zodField renders one field expression with modifiers in fixed order:
// base type, optional, nullable, default.
func zodField(f Field) (string, error) {
	base, err := zodBase(f)
	if err != nil {
		return "", err
	}
	if !f.Required {
		base += ".optional()"
	}
	if f.Nullable {
		base += ".nullable()"
	}
	if f.Default != nil {
		base += ".default(" + tsLiteral(f.Default) + ")"
	}
	return base, nil
}

func zodBase(f Field) (string, error) {
	switch f.Type {
	case TypeString:
		return "z.string()", nil
	case TypeEmail:
		return "z.string().email()", nil
	case TypeUUID:
		return "z.string().uuid()", nil
	case TypeInteger:
		return "z.number().int()" + zodBounds(f), nil
	case TypeNumber:
		return "z.number()" + zodBounds(f), nil
	case TypeBoolean:
		return "z.boolean()", nil
	case TypeTimestamp:
		return "z.coerce.date()", nil
	case TypeEnum:
		return zodEnum(f.Enum)
	case TypeArray:
		item, err := zodBase(Field{Type: f.Items})
		if err != nil {
			return "", err
		}
		return "z.array(" + item + ")", nil
	case TypeRef:
		ref := fmt.Sprintf("z.lazy(() => %sSchema)", f.Ref)
		if f.Many {
			return "z.array(" + ref + ")", nil
		}
		return ref, nil
	default:
		return "", fmt.Errorf("unsupported field type %q", f.Type)
	}
}

func zodBounds(f Field) string {
	var sb strings.Builder
	if f.Min != nil {
		fmt.Fprintf(&sb, ".min(%s)", tsNumber(*f.Min))
	}
	if f.Max != nil {
		fmt.Fprintf(&sb, ".max(%s)", tsNumber(*f.Max))
	}
	return sb.String()
}

func zodEnum(values []any) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("enum with no values")
	}
	allStrings := true
	for _, v := range values {
		if _, ok := v.(string); !ok {
			allStrings = false
			break
		}
	}
	literals := make([]string, len(values))
	for i, v := range values {
		literals[i] = tsLiteral(v)
	}
	if allStrings {
		return "z.enum([" + strings.Join(literals, ", ") + "])", nil
	}
	// Mixed or numeric enums fall back to a literal union.
	for i, lit := range literals {
		literals[i] = "z.literal(" + lit + ")"
	}
	return "z.union([" + strings.Join(literals, ", ") + "])", nil
}

// tsLiteral renders a Go value as a TypeScript literal.
func tsLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return tsNumber(val)
	case nil:
		return "null"
	default:
		return strconv.Quote(fmt.Sprintf("%v", val))
	}
}

func tsNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

var (
	_ Backend = (*zodBackend)(nil)
	_ Backend = (*firestoreBackend)(nil)
)
