// Package homework checks API answers and turns homework records into messages.
package homework

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	keyHomeworks   = "homeworks"
	keyCurrentDate = "current_date"
	keyName        = "homework_name"
	keyStatus      = "status"
)

// Record is one homework entry as decoded from JSON.
type Record map[string]any

// Response is a validated API answer. List items are checked lazily by Record,
// so an odd entry the caller never reads does not reject the whole answer.
type Response struct {
	Homeworks []any

	currentDate    int64
	hasCurrentDate bool
}

// CurrentDate returns the watermark the API suggests for the next request.
func (r Response) CurrentDate() (int64, bool) { return r.currentDate, r.hasCurrentDate }

// Len is the number of homework entries.
func (r Response) Len() int { return len(r.Homeworks) }

// Record returns entry i. A non-mapping entry is a malformed response.
func (r Response) Record(i int) (Record, error) {
	rec, ok := r.Homeworks[i].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s[%d] не словарь. Полученный тип: %s", ErrMalformedResponse, keyHomeworks, i, typeName(r.Homeworks[i]))
	}
	return Record(rec), nil
}

// Validate checks that v is a mapping with a "homeworks" list.
// "current_date" is optional but must be an integer when present.
func Validate(v any) (Response, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Response{}, fmt.Errorf("%w: Ответ пришел не в виде словаря. Тип ответа: %s", ErrMalformedResponse, typeName(v))
	}
	raw, ok := m[keyHomeworks]
	if !ok {
		return Response{}, fmt.Errorf("%w: В ответе нет ключа %s", ErrMalformedResponse, keyHomeworks)
	}
	list, ok := raw.([]any)
	if !ok {
		return Response{}, fmt.Errorf("%w: Под ключом %s содержится не список. Полученный тип: %s", ErrMalformedResponse, keyHomeworks, typeName(raw))
	}

	out := Response{Homeworks: list}

	if cd, ok := m[keyCurrentDate]; ok && cd != nil {
		ts, err := toInt64(cd)
		if err != nil {
			return Response{}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, keyCurrentDate, err)
		}
		out.currentDate, out.hasCurrentDate = ts, true
	}
	return out, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x.String())
		}
		return floatToInt64(f)
	case float64:
		return floatToInt64(x)
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	default:
		return 0, fmt.Errorf("not a number: %s", typeName(v))
	}
}

func floatToInt64(f float64) (int64, error) {
	// float64(math.MaxInt64) rounds up to 2^63, which no longer fits.
	if f != math.Trunc(f) || math.IsInf(f, 0) || f >= 0x1p63 || f < -0x1p63 {
		return 0, fmt.Errorf("not an integer timestamp: %v", f)
	}
	return int64(f), nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
