package markdown_test

import (
	"strings"
	"testing"

	"docsnap/internal/markdown"
)

func TestTable_Simple(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment(`<table>
<tr><th>Flag</th><th>Default</th></tr>
<tr><td>--retries</td><td>3</td></tr>
</table>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"| Flag | Default |", "| --- | --- |", "| --retries | 3 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestTable_SpansDuplicateContent(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment(`<table>
<tr><th colspan="2">Pair</th></tr>
<tr><td rowspan="2">shared</td><td>one</td></tr>
<tr><td>two</td></tr>
</table>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "Pair") != 2 {
		t.Errorf("colspan cell not duplicated:\n%s", out)
	}
	if strings.Count(out, "shared") != 2 {
		t.Errorf("rowspan cell not duplicated:\n%s", out)
	}
}

func TestTable_PipesEscaped(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment(`<table><tr><td>a | b</td></tr></table>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `a \| b`) {
		t.Errorf("pipe not escaped:\n%s", out)
	}
}

func TestAdmonition(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment(`<div class="admonition warning"><p>Do not do this.</p></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "> **Warning**") {
		t.Errorf("warning callout missing:\n%s", out)
	}
	if !strings.Contains(out, "> Do not do this.") {
		t.Errorf("callout body not quoted:\n%s", out)
	}
}

func TestPlainDivPassesThrough(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment(`<div class="wrapper"><p>regular text</p></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, ">") {
		t.Errorf("plain div rendered as callout:\n%s", out)
	}
}

func TestDefinitionList(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment(`<dl><dt>timeout</dt><dd>per-page limit</dd></dl>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "**timeout**") {
		t.Errorf("dt not bolded:\n%s", out)
	}
	if !strings.Contains(out, ": per-page limit") {
		t.Errorf("dd not rendered:\n%s", out)
	}
}
