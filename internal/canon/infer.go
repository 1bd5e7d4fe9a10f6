package canon

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/kellegram/skematic/internal/ir"
)

// dateTimePattern matches ISO-8601 date-times with optional fractional
// seconds and either a Z or ±HH:MM offset. The validator applies the same
// pattern when re-checking date-time attributes.
var dateTimePattern = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)

// IsDateTime reports whether s matches the ISO-8601 date-time pattern.
func IsDateTime(s string) bool {
	return dateTimePattern.MatchString(s)
}

// IsUUID reports whether s is a canonically formatted UUID v4.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	return err == nil && u.Version() == 4
}

// InferValue classifies one scalar or container value. Strings are tried as
// date-time first, then uuid, then fall back to plain string; numbers with
// no fractional part become integers; containers are tagged recursively.
func InferValue(v any) ir.Value {
	switch val := v.(type) {
	case nil:
		return ir.Null{}
	case bool:
		return ir.Bool(val)
	case string:
		switch {
		case IsDateTime(val):
			return ir.DateTime(val)
		case IsUUID(val):
			return ir.UUID(val)
		default:
			return ir.String(val)
		}
	case int:
		return ir.Int(val)
	case int64:
		return ir.Int(val)
	case float64:
		if val == float64(int64(val)) {
			return ir.Int(int64(val))
		}
		return ir.Float(val)
	case []any:
		arr := make(ir.Array, len(val))
		for i, elem := range val {
			arr[i] = InferValue(elem)
		}
		return arr
	case map[string]any:
		obj := make(ir.Object, len(val))
		for k, elem := range val {
			obj[k] = InferValue(elem)
		}
		return obj
	case ir.Value:
		return val
	default:
		// Anything the parser can produce is covered above; unknown Go
		// types degrade to their string form rather than failing the
		// compilation.
		return ir.String(fmt.Sprintf("%v", val))
	}
}
