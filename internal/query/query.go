// Package query exposes a loaded hierarchy as a JSON-shaped document and
// evaluates JSONPath expressions against it.
package query

import (
	"fmt"

	"github.com/dgallion1/uidump/internal/hierarchy"
	"github.com/dgallion1/uidump/internal/uinode"
	"github.com/ohler55/ojg/jp"
)

// Document returns the tree as nested maps:
//
//	{"rotation": "0", "nodes": [{"id", "label", "attributes", "bounds", "xpath", "indexed_xpath", "children"}]}
//
// bounds, xpath and indexed_xpath are omitted for nodes that cannot produce them.
func Document(tree *hierarchy.Tree) map[string]any {
	return map[string]any{
		"rotation": tree.Rotation,
		"nodes":    nodeList(tree, tree.Children),
	}
}

// Node returns the document of a single node and its subtree.
func Node(tree *hierarchy.Tree, n *uinode.Node) map[string]any {
	doc := map[string]any{
		"id":       tree.ID(n),
		"label":    n.DisplayName(),
		"children": nodeList(tree, n.Children()),
	}
	attrs := make(map[string]any, n.Attributes().Len())
	for k, v := range n.Attributes().Map() {
		attrs[k] = v
	}
	doc["attributes"] = attrs
	if n.HasBounds {
		doc["bounds"] = map[string]any{
			"x":      int64(n.Rect.X),
			"y":      int64(n.Rect.Y),
			"width":  int64(n.Rect.Width),
			"height": int64(n.Rect.Height),
		}
	}
	if xp, err := n.XPath(); err == nil {
		doc["xpath"] = xp
	}
	if xp, err := n.IndexedXPath(); err == nil {
		doc["indexed_xpath"] = xp
	}
	return doc
}

func nodeList(tree *hierarchy.Tree, nodes []*uinode.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Node(tree, n))
	}
	return out
}

// Run evaluates a JSONPath expression against Document(tree).
func Run(tree *hierarchy.Tree, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", expr, err)
	}
	return x.Get(Document(tree)), nil
}
