package generator

import (
	"errors"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"plain object", `{"a": 1}`, false},
		{"fenced json", "```json\n{\"a\": 1}\n```", false},
		{"bare fence", "```\n{\"a\": 1}\n```", false},
		{"prose wrapped", `Here is the result: {"a": 1} Hope that helps!`, false},
		{"no json at all", `I could not produce that.`, true},
		{"broken embedded", `result: {"a": `, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v map[string]int
			err := decodeJSON(tt.body, &v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Errorf("expected FormatError, got %T", err)
				}
			}
		})
	}
}

func TestDecodeListContainerKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"puzzles key", `{"puzzles": [{"x":1},{"x":2}]}`, 2},
		{"questions key", `{"questions": [{"x":1}]}`, 1},
		{"items key", `{"items": [{"x":1},{"x":2},{"x":3}]}`, 3},
		{"top-level array", `[{"x":1},{"x":2}]`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []map[string]int
			if err := decodeList(tt.body, &items); err != nil {
				t.Fatalf("decodeList() error = %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("got %d items, want %d", len(items), tt.want)
			}
		})
	}
}

func TestPadWrongOptions(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want int
	}{
		{"short list padded", []string{"a"}, 3},
		{"exact list kept", []string{"a", "b", "c"}, 3},
		{"long list truncated", []string{"a", "b", "c", "d", "e"}, 3},
		{"empty entries dropped", []string{"", "  ", "a"}, 3},
		{"nil input", nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padWrongOptions(tt.in, 3)
			if len(got) != tt.want {
				t.Fatalf("got %d options, want %d", len(got), tt.want)
			}
			for i, o := range got {
				if o == "" {
					t.Errorf("option %d is empty", i)
				}
			}
		})
	}
}
