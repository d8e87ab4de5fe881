package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args 도구 호출 인자
type Args map[string]any

// RequiredString 필수 문자열 인자
func (a Args) RequiredString(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", fmt.Errorf("필수 인자 %s가 없습니다", key)
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	if s == "" {
		return "", fmt.Errorf("필수 인자 %s가 비어 있습니다", key)
	}
	return s, nil
}

// String 선택 문자열 인자
func (a Args) String(key, def string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

// Bool 선택 불리언 인자. "true"/"false" 문자열도 받는다.
func (a Args) Bool(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, fmt.Errorf("%s: 불리언이 아닙니다: %q", key, val)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s: 불리언이 아닙니다: %v", key, v)
	}
}

// RequiredInt 필수 정수 인자. JSON 숫자는 float64로 들어오므로 소수부가 없어야 한다.
func (a Args) RequiredInt(key string) (int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("필수 인자 %s가 없습니다", key)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("%s: 정수가 아닙니다: %v", key, val)
		}
		return int(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s: 정수가 아닙니다: %s", key, val)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%s: 정수가 아닙니다: %q", key, val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s: 정수가 아닙니다: %v", key, v)
	}
}

// toString 문자열 인자. 단가처럼 숫자로 넘어오는 값도 문자열로 바꾼다.
func toString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case json.Number:
		return val.String(), nil
	default:
		return "", fmt.Errorf("문자열이 아닙니다: %v", v)
	}
}
