package jsonext

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestExtract_EmbeddedInProse(t *testing.T) {
	want := map[string]any{"feathers": []any{"a", "b"}, "count": float64(2)}
	encoded, _ := json.Marshal(want)
	raw := "Вот результат анализа:\n\n" + string(encoded) + "\n\nНадеюсь, это поможет!"

	msg, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtract_AlreadyValid(t *testing.T) {
	raw := `{"ok": true}`
	msg, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(msg) != raw {
		t.Errorf("valid JSON must pass through unchanged, got %q", msg)
	}
}

func TestExtract_TrailingCommas(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"before brace", `{"a": 1,}`, `{"a":1}`},
		{"before bracket", `{"a": [1, 2,]}`, `{"a":[1,2]}`},
		{"nested", `{"a": {"b": [1,],},}`, `{"a":{"b":[1]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := Extract(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got, want any
			if err := json.Unmarshal(msg, &got); err != nil {
				t.Fatalf("repaired output is not valid JSON: %v", err)
			}
			if err := json.Unmarshal([]byte(tc.want), &want); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestExtract_BrokenExplanationQuotes(t *testing.T) {
	raw := `{"duals": [{"quality": "Упрямство", "positive": "Настойчивость", "explanation": "он был "упрям" в этом"}]}`

	msg, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		Duals []struct {
			Explanation string `json:"explanation"`
		} `json:"duals"`
	}
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("repaired output is not valid JSON: %v", err)
	}
	if len(got.Duals) != 1 {
		t.Fatalf("expected 1 dual, got %d", len(got.Duals))
	}
	if got.Duals[0].Explanation != "он был упрям в этом" {
		t.Errorf("unexpected merged explanation: %q", got.Duals[0].Explanation)
	}
}

func TestExtract_NoJSON(t *testing.T) {
	_, err := Extract("Извините, я не могу помочь с этим запросом.")
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
}

func TestExtract_UnrepairableTruncatesSnippet(t *testing.T) {
	raw := "{" + strings.Repeat(`"key": truncated nonsense `, 100) + "}"

	_, err := Extract(raw)
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if len(exErr.Snippet) > 500 {
		t.Errorf("snippet must be capped at 500 chars, got %d", len(exErr.Snippet))
	}
}
