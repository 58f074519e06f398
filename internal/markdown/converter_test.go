package markdown_test

import (
	"strings"
	"testing"

	"docsnap/internal/markdown"
)

func TestPage_HeadingAndBody(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Page("Getting Started", `<p>Install the tool.</p><p>Run it.</p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "# Getting Started\n\n") {
		t.Fatalf("missing heading: %q", out)
	}
	if !strings.Contains(out, "Install the tool.") || !strings.Contains(out, "Run it.") {
		t.Fatalf("body lost: %q", out)
	}
}

func TestPage_EmptyBodyKeepsHeading(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Page("Empty", `<div></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "# Empty\n" {
		t.Fatalf("got %q", out)
	}
}

func TestFragment_CodeFenceWithLanguage(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment(`<pre><code class="language-golang">fmt.Println("hi")</code></pre>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "```go\n") {
		t.Fatalf("language hint missing (golang should normalize to go): %q", out)
	}
	if !strings.Contains(out, `fmt.Println("hi")`) {
		t.Fatalf("code lost: %q", out)
	}
}

func TestFragment_CodeContainingFence(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment("<pre><code>a\n```\nb</code></pre>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "````") {
		t.Fatalf("inner fence not escaped with longer fence: %q", out)
	}
}

func TestFragment_Links(t *testing.T) {
	conv := markdown.NewConverter()
	out, err := conv.Fragment(`<p>See <a href="https://d.example.com/api">the API</a>.</p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "[the API](https://d.example.com/api)") {
		t.Fatalf("link lost: %q", out)
	}
}
