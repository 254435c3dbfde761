package goji

import (
	"testing"
)

func TestIteration(t *testing.T) {
	for i, want := range []IterationContext{
		{I: 0, Odd: false, Even: true},
		{I: 1, Odd: true, Even: false},
		{I: 2, Odd: false, Even: true},
	} {
		if got := newIteration(i); got != want {
			t.Errorf("newIteration(%d) = %+v, want %+v", i, got, want)
		}
	}
}

func TestContext_WithCopies(t *testing.T) {
	base := Context{"a": 1}
	scoped := base.with("item", "x")

	if _, ok := base["item"]; ok {
		t.Error("with modified the receiver")
	}
	if scoped["a"] != 1 || scoped["item"] != "x" {
		t.Errorf("scoped = %v", scoped)
	}
}

func TestToContext(t *testing.T) {
	type page struct {
		Title   string `json:"title"`
		Count   int    `json:"count,omitempty"`
		Hidden  string `json:"-"`
		private string
	}

	tests := []struct {
		name    string
		data    any
		want    map[string]any
		wantErr bool
	}{
		{"nil", nil, map[string]any{}, false},
		{"context", Context{"a": 1}, map[string]any{"a": 1}, false},
		{"map", map[string]any{"a": "b"}, map[string]any{"a": "b"}, false},
		{"typed map", map[string]int{"n": 3}, map[string]any{"n": 3}, false},
		{"struct", page{Title: "T", Count: 2, Hidden: "h", private: "p"}, map[string]any{
			"title": "T", "Title": "T", "count": 2, "Count": 2, "Hidden": "h",
		}, false},
		{"struct pointer", &page{Title: "P"}, map[string]any{
			"title": "P", "Title": "P", "count": 0, "Count": 0, "Hidden": "",
		}, false},
		{"nil pointer", (*page)(nil), map[string]any{}, false},
		{"int key map", map[int]string{1: "a"}, nil, true},
		{"scalar", 42, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toContext(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("toContext: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{[]byte("b"), "b"},
		{42, "42"},
		{1.5, "1.5"},
		{true, "true"},
		{stringerPartial{}, "<i>stringer</i>"},
	}
	for _, tt := range tests {
		if got := stringify(tt.in); got != tt.want {
			t.Errorf("stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
