package uinode

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attribute names the derivations read.
const (
	AttrClass       = "class"
	AttrText        = "text"
	AttrContentDesc = "content-desc"
	AttrIndex       = "index"
	AttrBounds      = "bounds"
)

// PlaceholderName is the display name of a node that has not yet received
// all of class, text, content-desc, index and bounds.
const PlaceholderName = "ShouldNotSeeMe"

// Node is one element of a captured UI hierarchy.
//
// A Node is filled by SetAttribute while a dump is loaded and is read-only
// afterwards. It does no locking: concurrent readers are safe only once
// writes have stopped.
type Node struct {
	BasicTreeNode

	attrs       *orderedmap.OrderedMap[string, string]
	displayName string
	snapshot    []AttributePair
}

// New returns an empty node.
func New() *Node {
	return &Node{
		attrs:       orderedmap.New[string, string](),
		displayName: PlaceholderName,
	}
}

// SetAttribute inserts or overwrites name. An overwritten key keeps its
// original position. The display name is rebuilt, and a "bounds" value is
// parsed into the node's rectangle; a bounds value that does not parse is
// still stored but leaves the rectangle untouched and returns an
// *InvalidBoundsError.
func (n *Node) SetAttribute(name, value string) error {
	n.attrs.Set(name, value)
	n.updateDisplayName()
	if name == AttrBounds {
		return n.updateBounds(value)
	}
	return nil
}

// Attribute returns the value of name and whether it is present.
func (n *Node) Attribute(name string) (string, bool) {
	return n.attrs.Get(name)
}

// Attributes returns a read-only view of all attributes in insertion order.
func (n *Node) Attributes() AttributeView {
	return AttributeView{m: n.attrs}
}

// AttributesSnapshot returns the attribute pairs as they were on the first
// call. The result is cached and not refreshed by later SetAttribute calls.
func (n *Node) AttributesSnapshot() []AttributePair {
	if n.snapshot == nil {
		n.snapshot = n.Attributes().Pairs()
	}
	return n.snapshot
}

// DisplayName returns the one-line label of the node.
func (n *Node) DisplayName() string { return n.displayName }

func (n *Node) String() string { return n.displayName }

func (n *Node) updateBounds(bounds string) error {
	r, err := ParseBounds(bounds)
	if err != nil {
		return err
	}
	n.Rect = r
	n.HasBounds = true
	return nil
}

// require returns the named attribute or a *MissingAttributeError.
func (n *Node) require(name string) (string, error) {
	v, ok := n.attrs.Get(name)
	if !ok {
		return "", &MissingAttributeError{Name: name}
	}
	return v, nil
}

// AttributeView is a read-only, ordered view of a node's attributes.
type AttributeView struct {
	m *orderedmap.OrderedMap[string, string]
}

// Get returns the value of name and whether it is present.
func (v AttributeView) Get(name string) (string, bool) {
	return v.m.Get(name)
}

// Len returns the number of attributes.
func (v AttributeView) Len() int { return v.m.Len() }

// Pairs returns a fresh copy of the attributes in insertion order.
func (v AttributeView) Pairs() []AttributePair {
	out := make([]AttributePair, 0, v.m.Len())
	for p := v.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, AttributePair{Name: p.Key, Value: p.Value})
	}
	return out
}

// Map returns a copy of the attributes as a plain map.
func (v AttributeView) Map() map[string]string {
	out := make(map[string]string, v.m.Len())
	for p := v.m.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = p.Value
	}
	return out
}
