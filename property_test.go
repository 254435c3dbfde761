package goji

import (
	"html"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/livefir/goji/internal/dom"
)

var fakeTags = []string{"div", "span", "section", "article", "aside", "nav", "header", "footer"}

// fakeMarkup builds a random directive-free fragment.
func fakeMarkup(f *gofakeit.Faker, depth int) string {
	var sb strings.Builder
	for i, n := 0, f.Number(1, 3); i < n; i++ {
		if depth == 0 || f.Bool() {
			sb.WriteString(html.EscapeString(f.Word() + " " + f.Word()))
			continue
		}
		tag := fakeTags[f.Number(0, len(fakeTags)-1)]
		sb.WriteString("<" + tag)
		if f.Bool() {
			sb.WriteString(` class="` + html.EscapeString(f.Word()) + `"`)
		}
		if f.Bool() {
			sb.WriteString(` data-x="` + html.EscapeString(f.Word()) + `"`)
		}
		sb.WriteString(">")
		sb.WriteString(fakeMarkup(f, depth-1))
		sb.WriteString("</" + tag + ">")
	}
	return sb.String()
}

func TestRender_PropertyIdentityAndFixpoint(t *testing.T) {
	f := gofakeit.New(42)
	c := newTestCompiler(t)

	for i := 0; i < 200; i++ {
		markup := fakeMarkup(f, 4)

		doc, err := dom.Parse(markup)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		normalized, err := doc.Render()
		if err != nil {
			t.Fatalf("Render: %v", err)
		}

		once := renderWith(t, c, markup, nil)
		if once != normalized {
			t.Fatalf("directive-free template changed:\ninput: %s\n  got: %s\n want: %s", markup, once, normalized)
		}
		if twice := renderWith(t, c, once, nil); twice != once {
			t.Fatalf("rendered output is not a fixpoint:\n once: %s\ntwice: %s", once, twice)
		}
	}
}
