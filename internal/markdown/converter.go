package markdown

import (
	"fmt"
	"regexp"
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// Converter renders extracted page HTML as GitHub-flavored markdown.
// One Converter is safe to reuse across pages.
type Converter struct {
	md *htmltomd.Converter
}

func NewConverter() *Converter {
	conv := htmltomd.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	conv.Use(tablePlugin())
	conv.Use(docsPlugin())
	conv.AddRules(fencedCodeRule())
	return &Converter{md: conv}
}

// Page renders a single documentation page: H1 title, blank line, body.
// An empty body still yields the heading so every page has an anchor in
// the combined document.
func (c *Converter) Page(title, contentHTML string) (string, error) {
	body, err := c.md.ConvertString(contentHTML)
	if err != nil {
		return "", fmt.Errorf("convert %q: %w", title, err)
	}
	heading := "# " + strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if body == "" {
		return heading + "\n", nil
	}
	return heading + "\n\n" + body + "\n", nil
}

// Fragment converts an HTML fragment without adding a heading.
func (c *Converter) Fragment(contentHTML string) (string, error) {
	body, err := c.md.ConvertString(contentHTML)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}

// fencedCodeRule keeps <pre><code> blocks as fenced code with the
// language hint from the class attribute.
func fencedCodeRule() htmltomd.Rule {
	return htmltomd.Rule{
		Filter: []string{"pre"},
		Replacement: func(_ string, selec *goquery.Selection, _ *htmltomd.Options) *string {
			if selec == nil {
				empty := ""
				return &empty
			}
			code := selec.Find("code").First()
			if code.Length() == 0 {
				return nil
			}

			text := strings.ReplaceAll(code.Text(), "\r\n", "\n")
			text = strings.TrimSuffix(text, "\n")
			fence := "```"
			if strings.Contains(text, "```") {
				fence = "````"
			}
			out := "\n" + fence + languageHint(code) + "\n" + text + "\n" + fence + "\n"
			return &out
		},
	}
}

var langClassRe = regexp.MustCompile(`(?:^|\s)(?:language|lang|highlight-source)-([a-zA-Z0-9_+-]+)(?:\s|$)`)

func languageHint(code *goquery.Selection) string {
	class := strings.TrimSpace(code.AttrOr("class", ""))
	if class == "" {
		class = strings.TrimSpace(code.Parent().AttrOr("class", ""))
	}
	m := langClassRe.FindStringSubmatch(class)
	if len(m) != 2 {
		return ""
	}
	lang := strings.ToLower(m[1])
	if lang == "golang" {
		lang = "go"
	}
	return lang
}
