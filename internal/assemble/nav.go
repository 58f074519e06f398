package assemble

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"docsnap/internal/config"
	"docsnap/internal/navtree"
	"docsnap/internal/state"
)

// navArtifacts renders the navigation tree in its three standalone
// forms. A missing tree yields no nav files rather than empty ones.
func navArtifacts(fs *state.Fetch) map[string][]byte {
	if fs.Navigation == nil {
		return nil
	}
	raw, err := json.MarshalIndent(fs.Navigation, "", "  ")
	if err != nil {
		raw = []byte("{}")
	}
	return map[string][]byte{
		config.NavJSONFile:     append(raw, '\n'),
		config.NavMarkdownFile: []byte(navMarkdown(fs.Navigation)),
		config.NavHTMLFile:     []byte(navHTML(fs.Navigation)),
	}
}

func navMarkdown(root *navtree.Node) string {
	var b strings.Builder
	var walk func(n *navtree.Node, depth int)
	walk = func(n *navtree.Node, depth int) {
		for _, child := range n.Children {
			indent := strings.Repeat("  ", depth)
			if child.URL != "" {
				fmt.Fprintf(&b, "%s- [%s](%s)\n", indent, child.Title, child.URL)
			} else {
				fmt.Fprintf(&b, "%s- %s\n", indent, child.Title)
			}
			walk(child, depth+1)
		}
	}
	walk(root, 0)
	return b.String()
}

func navHTML(root *navtree.Node) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Navigation</title>\n</head>\n<body>\n<nav>\n")
	writeNavList(&b, root)
	b.WriteString("</nav>\n</body>\n</html>\n")
	return b.String()
}

func writeNavList(b *strings.Builder, n *navtree.Node) {
	if len(n.Children) == 0 {
		return
	}
	b.WriteString("<ul>\n")
	for _, child := range n.Children {
		b.WriteString("<li>")
		if child.URL != "" {
			fmt.Fprintf(b, "<a href=%q>%s</a>", child.URL, html.EscapeString(child.Title))
		} else {
			b.WriteString(html.EscapeString(child.Title))
		}
		writeNavList(b, child)
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
}
