package navtree_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"docsnap/internal/navtree"
	"docsnap/internal/sitemap"
)

func TestNode_WalkOrder(t *testing.T) {
	root := navtree.NewRoot()
	guide := &navtree.Node{Title: "Guide"}
	root.Append(guide)
	guide.Append(&navtree.Node{Title: "Intro", URL: "https://d.example.com/intro"})
	guide.Append(&navtree.Node{Title: "Setup", URL: "https://d.example.com/setup"})
	root.Append(&navtree.Node{Title: "API", URL: "https://d.example.com/api"})

	var titles []string
	root.Walk(func(n *navtree.Node) { titles = append(titles, n.Title) })
	want := []string{"Guide", "Intro", "Setup", "API"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("walk order %v, want %v", titles, want)
	}
	if root.Count() != 4 {
		t.Fatalf("count %d, want 4", root.Count())
	}
}

func TestNode_URLsDeduped(t *testing.T) {
	root := navtree.NewRoot()
	root.Append(&navtree.Node{Title: "A", URL: "https://d.example.com/a"})
	root.Append(&navtree.Node{Title: "Section"})
	root.Append(&navtree.Node{Title: "A again", URL: "https://d.example.com/a"})
	root.Append(&navtree.Node{Title: "B", URL: "https://d.example.com/b"})

	want := []string{"https://d.example.com/a", "https://d.example.com/b"}
	if got := root.URLs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("urls %v, want %v", got, want)
	}
}

func TestNode_RelinkAfterJSON(t *testing.T) {
	root := navtree.NewRoot()
	parent := &navtree.Node{Title: "Guide"}
	root.Append(parent)
	parent.Append(&navtree.Node{Title: "Intro", URL: "https://d.example.com/intro"})

	raw, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	var loaded navtree.Node
	if err := json.Unmarshal(raw, &loaded); err != nil {
		t.Fatal(err)
	}
	loaded.Relink()

	child := loaded.Children[0].Children[0]
	if child.Parent() == nil || child.Parent().Title != "Guide" {
		t.Fatalf("parent pointer not restored: %+v", child.Parent())
	}
}

func TestFlat(t *testing.T) {
	records := sitemap.Records([]string{
		"https://d.example.com/b",
		"https://d.example.com/a",
	})
	root := navtree.Flat(records)
	if root.Count() != 2 {
		t.Fatalf("count %d, want 2", root.Count())
	}
	// Flat keeps sitemap order, not alphabetical.
	if root.Children[0].URL != "https://d.example.com/b" {
		t.Fatalf("first child %q", root.Children[0].URL)
	}
	if root.Children[0].Title != "b" {
		t.Fatalf("flat title %q, want slug", root.Children[0].Title)
	}
}
