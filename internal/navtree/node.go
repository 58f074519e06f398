package navtree

import "docsnap/internal/sitemap"

// Node is one entry in the navigation tree. Section headers have no
// URL. Children keep displayed order; the parent pointer is for
// traversal only and is rebuilt after JSON round-trips.
type Node struct {
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	Children []*Node `json:"children,omitempty"`

	parent *Node
}

// NewRoot returns the synthetic root every extracted tree hangs off.
func NewRoot() *Node {
	return &Node{Title: "root"}
}

func (n *Node) Parent() *Node { return n.parent }

// Append adds child as the last entry, wiring its parent pointer.
// Nodes are only ever appended during a single top-down pass, so the
// structure cannot contain cycles.
func (n *Node) Append(child *Node) {
	child.parent = n
	n.Children = append(n.Children, child)
}

// Relink restores parent pointers below n, for trees loaded from JSON.
func (n *Node) Relink() {
	for _, child := range n.Children {
		child.parent = n
		child.Relink()
	}
}

// Walk visits every node below n in depth-first pre-order. The root
// itself is not visited.
func (n *Node) Walk(fn func(*Node)) {
	for _, child := range n.Children {
		fn(child)
		child.Walk(fn)
	}
}

// URLs returns the tree's page URLs in depth-first pre-order, first
// occurrence only.
func (n *Node) URLs() []string {
	seen := map[string]struct{}{}
	var out []string
	n.Walk(func(node *Node) {
		if node.URL == "" {
			return
		}
		if _, ok := seen[node.URL]; ok {
			return
		}
		seen[node.URL] = struct{}{}
		out = append(out, node.URL)
	})
	return out
}

// Count returns the number of nodes below n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) { count++ })
	return count
}

// Flat builds the single-level fallback tree used when no navigation
// container can be located: sitemap order, every record a leaf.
func Flat(records []sitemap.Record) *Node {
	root := NewRoot()
	for _, rec := range records {
		root.Append(&Node{Title: rec.Slug, URL: rec.URL})
	}
	return root
}
