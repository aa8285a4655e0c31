package uinode

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether the point lies inside the rectangle, edges inclusive.
func (r Rect) Contains(px, py int) bool {
	return px >= r.X && px <= r.X+r.Width && py >= r.Y && py <= r.Y+r.Height
}

// BasicTreeNode holds the structural part of a hierarchy node: its place in
// the tree and its on-screen rectangle.
type BasicTreeNode struct {
	Rect      Rect
	HasBounds bool

	parent   *Node
	children []*Node
}

// Parent returns the parent node, or nil for a top-level node.
func (b *BasicTreeNode) Parent() *Node { return b.parent }

// Children returns the node's children in document order.
func (b *BasicTreeNode) Children() []*Node { return b.children }

// HasChildren reports whether the node has any children.
func (b *BasicTreeNode) HasChildren() bool { return len(b.children) > 0 }

// AddChild appends child to n and sets its parent.
func (n *Node) AddChild(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
}

// AttributePair is one (name, value) entry of a node's attribute list.
type AttributePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
