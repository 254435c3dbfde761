package goji

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTemplates creates files under a temporary templates directory and returns it.
func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestParseTemplateRef(t *testing.T) {
	tests := []struct {
		value    string
		name     string
		selector string
		wantErr  bool
	}{
		{"header :: nav", "header", "nav", false},
		{"header::nav", "header", "nav", false},
		{"  layout/base  ::  #main > p  ", "layout/base", "#main > p", false},
		{"header", "header", "", false},
		{" :: nav", "", "nav", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		ref, err := parseTemplateRef(attrInclude, tt.value)
		if tt.wantErr {
			var dirErr *DirectiveError
			if !errors.As(err, &dirErr) {
				t.Errorf("parseTemplateRef(%q): expected DirectiveError, got %v", tt.value, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTemplateRef(%q): %v", tt.value, err)
			continue
		}
		if ref.name != tt.name || ref.selector != tt.selector {
			t.Errorf("parseTemplateRef(%q) = %+v, want name=%q selector=%q", tt.value, ref, tt.name, tt.selector)
		}
	}
}

func TestCompose_IncludeAndReplace(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"header.html": `<header><h1>Title</h1><nav class="top">links</nav></header>`,
		"layout/page.html": `<!DOCTYPE html><html><head><title>page</title></head>` +
			`<body><section id="content"><p>body</p></section></body></html>`,
		"outer.html": `<div class="outer" g-include="header :: nav"></div>`,
	})

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"include selected node's children", `<div g-include="header :: nav"></div>`, `<div>links</div>`},
		{"include keeps host attributes", `<div id="h" g-include="header :: h1">old</div>`, `<div id="h">Title</div>`},
		{"include whole template", `<main g-include="header"></main>`, `<main><header><h1>Title</h1><nav class="top">links</nav></header></main>`},
		{"replace with selected node", `<div g-replace="header :: nav"></div>`, `<nav class="top">links</nav>`},
		{"replace with whole template", `<p>a</p><div g-replace="header"></div><p>b</p>`, `<p>a</p><header><h1>Title</h1><nav class="top">links</nav></header><p>b</p>`},
		{"from full document", `<div g-include="layout/page :: #content"></div>`, `<div><p>body</p></div>`},
		{"replace with whole full document body", `<div g-replace="layout/page"></div>`, `<section id="content"><p>body</p></section>`},
		{"nested include settles first", `<div g-include="outer"></div>`, `<div><div class="outer">links</div></div>`},
		{"missing template", `<div g-include="missing :: nav">keep</div>`, `<div>keep</div>`},
		{"missing selector match", `<div g-replace="header :: footer">keep</div>`, `<div>keep</div>`},
		{"include then replace", `<div g-include="header :: h1"></div><i g-replace="header :: nav"></i>`, `<div>Title</div><nav class="top">links</nav>`},
	}

	c := newTestCompiler(t, WithTemplatesDir(dir))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderWith(t, c, tt.template, nil); got != tt.want {
				t.Errorf("got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestCompose_IncludedDirectivesRender(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"greeting.html": `<p class="greeting"><span g-text="name"></span></p>`,
	})

	c := newTestCompiler(t, WithTemplatesDir(dir))
	got := renderWith(t, c, `<div g-include="greeting :: p"></div>`, Context{"name": "ann"})
	if got != `<div><span>ann</span></div>` {
		t.Errorf("got %q", got)
	}
}

func TestCompose_Cycle(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"a.html":    `<div g-include="b"></div>`,
		"b.html":    `<div g-include="a"></div>`,
		"self.html": `<div g-replace="self"></div>`,
	})
	c := newTestCompiler(t, WithTemplatesDir(dir))

	_, err := c.Compile(`<div g-include="a"></div>`)
	var cycleErr *CompositionCycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CompositionCycleError, got %v", err)
	}
	want := []string{"a", "b", "a"}
	if len(cycleErr.Chain) != len(want) {
		t.Fatalf("chain = %v, want %v", cycleErr.Chain, want)
	}
	for i := range want {
		if cycleErr.Chain[i] != want[i] {
			t.Errorf("chain = %v, want %v", cycleErr.Chain, want)
			break
		}
	}

	if _, err := c.Compile(`<div g-replace="self"></div>`); !errors.As(err, &cycleErr) {
		t.Errorf("expected CompositionCycleError for self replace, got %v", err)
	}
}

func TestCompose_DepthLimit(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"l1.html": `<div g-include="l2"></div>`,
		"l2.html": `<div g-include="l3"></div>`,
		"l3.html": `<p>deep</p>`,
	})

	c := newTestCompiler(t, WithTemplatesDir(dir), WithMaxDepth(2))
	_, err := c.Compile(`<div g-include="l1"></div>`)
	var cycleErr *CompositionCycleError
	if !errors.As(err, &cycleErr) || cycleErr.Limit != 2 {
		t.Fatalf("expected depth limit error, got %v", err)
	}

	c = newTestCompiler(t, WithTemplatesDir(dir), WithMaxDepth(3))
	if got := renderWith(t, c, `<div g-include="l1"></div>`, nil); got != `<div><div><div><p>deep</p></div></div></div>` {
		t.Errorf("got %q", got)
	}
}

func TestCompose_InvalidSelector(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"header.html": `<header></header>`})
	c := newTestCompiler(t, WithTemplatesDir(dir))

	_, err := c.Compile(`<div g-include="header :: [["></div>`)
	var dirErr *DirectiveError
	if !errors.As(err, &dirErr) {
		t.Errorf("expected DirectiveError, got %v", err)
	}
}

func TestCompose_PerCallTemplatesDir(t *testing.T) {
	one := writeTemplates(t, map[string]string{"part.html": `<b>one</b>`})
	two := writeTemplates(t, map[string]string{"part.html": `<b>two</b>`})
	c := newTestCompiler(t, WithTemplatesDir(one))

	tmpl := `<div g-include="part"></div>`
	render, err := c.Compile(tmpl, WithTemplatesDir(two))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out, err := render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != `<div><b>two</b></div>` {
		t.Errorf("per-call directory: got %q", out)
	}

	if got := renderWith(t, c, tmpl, nil); got != `<div><b>one</b></div>` {
		t.Errorf("compiler directory: got %q", got)
	}
}

func TestCompose_ResolvesAgainstTemplatesDir(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"card.html":          `<b>template</b>`,
		"partials/card.html": `<b>partial</b>`,
		"partials/only.html": `<b>partial only</b>`,
	})
	c := newTestCompiler(t, WithTemplatesDir(dir))

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"include", `<div g-include="card"></div>`, `<div><b>template</b></div>`},
		{"replace", `<div g-replace="card"></div>`, `<b>template</b>`},
		{"partials dir is not searched", `<div g-include="only">keep</div>`, `<div>keep</div>`},
		{"path relative to templates dir", `<div g-include="partials/only"></div>`, `<div><b>partial only</b></div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderWith(t, c, tt.template, nil); got != tt.want {
				t.Errorf("got %q\nwant %q", got, tt.want)
			}
		})
	}
}
