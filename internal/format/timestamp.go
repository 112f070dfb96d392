package format

import (
	"encoding/json"
	"time"
)

// NormalizeTimestamp приводит значение из wire-формата к time.Time.
// Поддерживаются три формы:
//   - объект Firestore timestamp: {"seconds": N, "nanoseconds": N}
//   - строка ISO 8601 / RFC 3339
//   - всё остальное (включая ошибки парсинга) - текущее время
func NormalizeTimestamp(v any) time.Time {
	switch ts := v.(type) {
	case map[string]any:
		// Firestore возвращает {seconds, nanoseconds}, числа приходят как float64
		seconds, ok := asInt64(ts["seconds"])
		if !ok {
			return time.Now()
		}

		nanos, _ := asInt64(ts["nanoseconds"])

		return time.Unix(seconds, nanos)
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, ts); err == nil {
				return t
			}
		}

		return time.Now()
	case time.Time:
		return ts
	default:
		return time.Now()
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// FlexTime - время, принимающее оба wire-формата (Firestore объект или ISO строка)
type FlexTime struct {
	time.Time
}

// UnmarshalJSON парсит время из любого поддерживаемого формата
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Time = time.Now()
		return nil
	}

	if raw == nil {
		t.Time = time.Time{}
		return nil
	}

	t.Time = NormalizeTimestamp(raw)

	return nil
}

// MarshalJSON сериализует время в RFC 3339
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
