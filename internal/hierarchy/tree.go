package hierarchy

import (
	"strconv"

	"github.com/dgallion1/uidump/internal/uinode"
)

// Tree is the root of a parsed UI hierarchy dump.
type Tree struct {
	Rotation string         // <hierarchy rotation="..."> (empty if absent)
	Children []*uinode.Node // Top-level nodes
	Warnings []string       // Per-node problems tolerated while loading

	ids   map[*uinode.Node]string
	byID  map[string]*uinode.Node
	order []*uinode.Node
}

// Len returns the total number of nodes.
func (t *Tree) Len() int { return len(t.order) }

// Node returns the node with the given dotted ID, or nil.
func (t *Tree) Node(id string) *uinode.Node { return t.byID[id] }

// ID returns the dotted child-index path of n ("0", "0.2.1"), or "" if n is
// not part of the tree.
func (t *Tree) ID(n *uinode.Node) string { return t.ids[n] }

// Walk visits every node depth-first in document order. Returning false
// from fn stops the walk.
func (t *Tree) Walk(fn func(id string, n *uinode.Node) bool) {
	for _, n := range t.order {
		if !fn(t.ids[n], n) {
			return
		}
	}
}

// Find returns all nodes for which match returns true, in document order.
func (t *Tree) Find(match func(n *uinode.Node) bool) []*uinode.Node {
	var out []*uinode.Node
	for _, n := range t.order {
		if match(n) {
			out = append(out, n)
		}
	}
	return out
}

// NodesAt returns the leaf-most nodes containing the point: nodes whose
// rectangle contains (x, y) while none of their children's does. Nodes
// without bounds never match.
func (t *Tree) NodesAt(x, y int) []*uinode.Node {
	var out []*uinode.Node
	var visit func(n *uinode.Node) bool
	visit = func(n *uinode.Node) bool {
		if !n.HasBounds || !n.Rect.Contains(x, y) {
			return false
		}
		found := false
		for _, c := range n.Children() {
			if visit(c) {
				found = true
			}
		}
		if !found {
			out = append(out, n)
		}
		return true
	}
	for _, n := range t.Children {
		visit(n)
	}
	return out
}

func (t *Tree) index() {
	t.ids = make(map[*uinode.Node]string)
	t.byID = make(map[string]*uinode.Node)
	t.order = t.order[:0]

	var visit func(prefix string, nodes []*uinode.Node)
	visit = func(prefix string, nodes []*uinode.Node) {
		for i, n := range nodes {
			id := strconv.Itoa(i)
			if prefix != "" {
				id = prefix + "." + id
			}
			t.ids[n] = id
			t.byID[id] = n
			t.order = append(t.order, n)
			// Fill the snapshot cache now so later readers never write.
			n.AttributesSnapshot()
			visit(id, n.Children())
		}
	}
	visit("", t.Children)
}
