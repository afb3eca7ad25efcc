package integration

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// isEmptySentinel reports whether v is the remote "no value" marker
func isEmptySentinel(v any) bool {
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return ok && !b
}

// remoteID converts a decoded remote number to an id
func remoteID(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n <= 0 {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, n > 0
	case int:
		return int64(n), n > 0
	case json.Number:
		id, err := n.Int64()
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}

// unwrapPair returns the id of an [id, label] pair, or v unchanged
func unwrapPair(v any) any {
	if pair, ok := v.([]any); ok && len(pair) == 2 {
		if _, isID := remoteID(pair[0]); isID {
			return pair[0]
		}
	}
	return v
}

// relationID extracts the target id of a single-valued remote relation
func relationID(v any) (int64, bool) {
	if isEmptySentinel(v) {
		return 0, false
	}
	return remoteID(unwrapPair(v))
}

// relationIDs extracts the target ids of a many-valued remote relation
func relationIDs(v any) []int64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		if id, ok := remoteID(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// toLocal normalizes a remote value for a local field.
// The empty sentinel becomes the zero value of the field kind ("" for text),
// and an [id, label] pair is reduced to its id.
func toLocal(kind integration.FieldKind, v any) (any, error) {
	v = unwrapPair(v)
	if isEmptySentinel(v) && kind != integration.FieldBool {
		switch kind {
		case integration.FieldText:
			return "", nil
		case integration.FieldInteger:
			return int64(0), nil
		case integration.FieldDecimal:
			return decimal.Zero, nil
		default:
			return nil, nil
		}
	}

	switch kind {
	case integration.FieldText:
		switch s := v.(type) {
		case string:
			return s, nil
		case float64:
			if id, ok := remoteID(s); ok {
				return strconv.FormatInt(id, 10), nil
			}
			return strconv.FormatFloat(s, 'f', -1, 64), nil
		default:
			return fmt.Sprint(s), nil
		}
	case integration.FieldInteger:
		switch n := v.(type) {
		case float64:
			return int64(math.Round(n)), nil
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case json.Number:
			return n.Int64()
		case string:
			return strconv.ParseInt(n, 10, 64)
		case bool:
			if n {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case integration.FieldDecimal:
		switch n := v.(type) {
		case float64:
			return decimal.NewFromFloat(n), nil
		case int64:
			return decimal.NewFromInt(n), nil
		case json.Number:
			return decimal.NewFromString(n.String())
		case string:
			return decimal.NewFromString(n)
		}
	case integration.FieldBool:
		switch b := v.(type) {
		case nil:
			return false, nil
		case bool:
			return b, nil
		case float64:
			return b != 0, nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T to %s", v, kind)
}

// toRemote converts a local value to its wire form.
// Empty text and missing values become the false sentinel.
func toRemote(kind integration.FieldKind, v any) any {
	if v == nil {
		return false
	}
	switch kind {
	case integration.FieldText:
		s := fmt.Sprint(v)
		if str, ok := v.(string); ok {
			s = str
		}
		if s == "" {
			return false
		}
		return s
	case integration.FieldDecimal:
		switch d := v.(type) {
		case decimal.Decimal:
			return d.InexactFloat64()
		case string:
			if parsed, err := decimal.NewFromString(d); err == nil {
				return parsed.InexactFloat64()
			}
			return false
		case []byte:
			if parsed, err := decimal.NewFromString(string(d)); err == nil {
				return parsed.InexactFloat64()
			}
			return false
		}
	case integration.FieldInteger:
		switch n := v.(type) {
		case int:
			return int64(n)
		case int32:
			return int64(n)
		}
	}
	return v
}

// localRef converts a default value for a relation to a local id or nil
func localRef(v any) any {
	switch id := v.(type) {
	case nil:
		return nil
	case string:
		if id == "" {
			return nil
		}
		return id
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
