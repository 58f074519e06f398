package markdown

import (
	"strconv"
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// tablePlugin flattens tables that use rowspan/colspan into a plain
// markdown grid, duplicating spanned cell content so no data is lost.
func tablePlugin() htmltomd.Plugin {
	return func(conv *htmltomd.Converter) []htmltomd.Rule {
		return []htmltomd.Rule{{
			Filter: []string{"table"},
			Replacement: func(_ string, selec *goquery.Selection, _ *htmltomd.Options) *string {
				rows := selec.Find("tr")
				if rows.Length() == 0 {
					return nil
				}
				g := newGrid()
				rows.Each(func(r int, tr *goquery.Selection) {
					g.addRow(conv, r, tr)
				})
				out := g.render()
				return &out
			},
		}}
	}
}

type grid struct {
	cells map[int]map[int]string
	rows  int
	width int
}

func newGrid() *grid {
	return &grid{cells: map[int]map[int]string{}}
}

func (g *grid) addRow(conv *htmltomd.Converter, r int, tr *goquery.Selection) {
	g.rows++
	col := 0
	tr.Children().Filter("td, th").Each(func(_ int, cell *goquery.Selection) {
		for g.taken(r, col) {
			col++
		}
		text := flattenCell(conv.Convert(cell))
		down := spanOf(cell, "rowspan")
		across := spanOf(cell, "colspan")
		for dr := 0; dr < down; dr++ {
			for dc := 0; dc < across; dc++ {
				g.put(r+dr, col+dc, text)
			}
		}
		col += across
	})
}

func (g *grid) taken(r, c int) bool {
	_, ok := g.cells[r][c]
	return ok
}

func (g *grid) put(r, c int, text string) {
	if g.cells[r] == nil {
		g.cells[r] = map[int]string{}
	}
	g.cells[r][c] = text
	if c+1 > g.width {
		g.width = c + 1
	}
}

func (g *grid) render() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		b.WriteString("|")
		for c := 0; c < g.width; c++ {
			b.WriteString(" " + g.cells[r][c] + " |")
		}
		b.WriteString("\n")
		if r == 0 {
			b.WriteString("|")
			b.WriteString(strings.Repeat(" --- |", g.width))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func spanOf(cell *goquery.Selection, attr string) int {
	if n, err := strconv.Atoi(cell.AttrOr(attr, "1")); err == nil && n > 1 {
		return n
	}
	return 1
}

func flattenCell(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "|", "\\|")
	return strings.ReplaceAll(text, "\n", " ")
}

var admonitionTitles = []struct{ marker, title string }{
	{"warning", "Warning"},
	{"caution", "Warning"},
	{"danger", "Warning"},
	{"important", "Important"},
	{"note", "Note"},
	{"tip", "Tip"},
	{"info", "Info"},
}

// docsPlugin handles documentation-site idioms the base converter
// drops: admonition callouts and definition lists.
func docsPlugin() htmltomd.Plugin {
	return func(_ *htmltomd.Converter) []htmltomd.Rule {
		return []htmltomd.Rule{
			{
				Filter: []string{"div", "aside", "blockquote"},
				Replacement: func(content string, selec *goquery.Selection, _ *htmltomd.Options) *string {
					classes := strings.ToLower(selec.AttrOr("class", ""))
					title := ""
					for _, a := range admonitionTitles {
						if strings.Contains(classes, a.marker) {
							title = a.title
							break
						}
					}
					if title == "" {
						return nil
					}
					out := renderCallout(title, content)
					return &out
				},
			},
			{
				Filter: []string{"dt"},
				Replacement: func(content string, _ *goquery.Selection, _ *htmltomd.Options) *string {
					out := "\n**" + strings.TrimSpace(content) + "**\n"
					return &out
				},
			},
			{
				Filter: []string{"dd"},
				Replacement: func(content string, _ *goquery.Selection, _ *htmltomd.Options) *string {
					out := ": " + strings.TrimSpace(content) + "\n"
					return &out
				},
			},
		}
	}
}

func renderCallout(title, content string) string {
	var b strings.Builder
	b.WriteString("> **" + title + "**\n")
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString(">\n")
			continue
		}
		b.WriteString("> " + line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}
