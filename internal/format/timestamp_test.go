package format

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeTimestampFirestore(t *testing.T) {
	got := NormalizeTimestamp(map[string]any{
		"seconds":     float64(1700000000),
		"nanoseconds": float64(0),
	})

	want := time.Unix(1700000000, 0)
	if !got.Equal(want) {
		t.Fatalf("NormalizeTimestamp(firestore) = %v, want %v", got, want)
	}
}

func TestNormalizeTimestampISO(t *testing.T) {
	got := NormalizeTimestamp("2023-11-14T22:13:20Z")

	want := time.Unix(1700000000, 0)
	if !got.Equal(want) {
		t.Fatalf("NormalizeTimestamp(iso) = %v, want %v", got, want)
	}
}

func TestNormalizeTimestampDateOnly(t *testing.T) {
	got := NormalizeTimestamp("2023-11-14")
	if got.Year() != 2023 || got.Month() != time.November || got.Day() != 14 {
		t.Fatalf("NormalizeTimestamp(date) = %v", got)
	}
}

// Непарсящееся значение не должно падать - возвращается текущее время
func TestNormalizeTimestampFallback(t *testing.T) {
	for _, v := range []any{"not-a-date", 42.0, nil, map[string]any{"foo": "bar"}} {
		before := time.Now()
		got := NormalizeTimestamp(v)
		after := time.Now()

		if got.Before(before.Add(-time.Second)) || got.After(after.Add(time.Second)) {
			t.Errorf("NormalizeTimestamp(%v) = %v, expected fallback to now", v, got)
		}
	}
}

func TestFlexTimeUnmarshal(t *testing.T) {
	var payload struct {
		EntryTime FlexTime `json:"entry_time"`
		ExitTime  FlexTime `json:"exit_time"`
	}

	raw := `{
		"entry_time": {"seconds": 1700000000, "nanoseconds": 500000000},
		"exit_time": "2023-11-15T10:00:00Z"
	}`

	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !payload.EntryTime.Equal(time.Unix(1700000000, 500000000)) {
		t.Errorf("entry_time = %v", payload.EntryTime)
	}

	want, _ := time.Parse(time.RFC3339, "2023-11-15T10:00:00Z")
	if !payload.ExitTime.Equal(want) {
		t.Errorf("exit_time = %v, want %v", payload.ExitTime, want)
	}
}

func TestFlexTimeNull(t *testing.T) {
	var payload struct {
		ExitTime FlexTime `json:"exit_time"`
	}

	if err := json.Unmarshal([]byte(`{"exit_time": null}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !payload.ExitTime.IsZero() {
		t.Fatalf("exit_time = %v, want zero", payload.ExitTime.Time)
	}
}

func TestFlexTimeMarshalZero(t *testing.T) {
	data, err := json.Marshal(FlexTime{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if string(data) != "null" {
		t.Fatalf("marshal zero = %s, want null", data)
	}
}
