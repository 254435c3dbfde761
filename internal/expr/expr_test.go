package expr

import (
	"testing"
)

func TestEvaluator_Eval(t *testing.T) {
	e, err := NewEvaluator(0)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	env := map[string]any{
		"foo":    "bar",
		"answer": 42,
		"user":   map[string]any{"name": "Ada", "admin": true},
		"items":  []any{"a", "b", "c"},
		"greet":  func() string { return "hello" },
		"iter":   map[string]any{"i": 1, "odd": true, "even": false},
	}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{"single quoted compare", "foo == 'bar'", true},
		{"double quoted compare", `foo == "baz"`, false},
		{"member access", "user.name", "Ada"},
		{"nested bool", "user.admin", true},
		{"function call", "greet()", "hello"},
		{"arithmetic", "answer + 1", 43},
		{"string literal", "'extra'", "extra"},
		{"ternary", "iter.odd ? 'odd' : 'even'", "odd"},
		{"length", "len(items)", 3},
		{"undefined is nil", "missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Eval(tt.src, env)
			if err != nil {
				t.Fatalf("Eval(%q) error: %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %#v, want %#v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvaluator_CompileError(t *testing.T) {
	e, _ := NewEvaluator(4)

	if _, err := e.Eval("foo ==", map[string]any{}); err == nil {
		t.Fatal("expected compile error for malformed expression")
	}
	if e.Len() != 0 {
		t.Errorf("failed programs must not be cached, got %d", e.Len())
	}
}

func TestEvaluator_CachesPrograms(t *testing.T) {
	e, _ := NewEvaluator(2)

	p1, err := e.Compile("a + b")
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := e.Compile("a + b")
	if p1 != p2 {
		t.Error("expected the cached program to be reused")
	}

	e.Compile("1")
	e.Compile("2")
	if e.Len() != 2 {
		t.Errorf("expected LRU bound of 2, got %d", e.Len())
	}

	e.Purge()
	if e.Len() != 0 {
		t.Errorf("expected empty cache after purge, got %d", e.Len())
	}
}
