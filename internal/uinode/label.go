package uinode

import "strings"

// updateDisplayName rebuilds the label once class, text, content-desc, index
// and bounds are all present. Until then the previous label stays.
func (n *Node) updateDisplayName() {
	className, ok := n.attrs.Get(AttrClass)
	if !ok {
		return
	}
	text, ok := n.attrs.Get(AttrText)
	if !ok {
		return
	}
	contentDesc, ok := n.attrs.Get(AttrContentDesc)
	if !ok {
		return
	}
	index, ok := n.attrs.Get(AttrIndex)
	if !ok {
		return
	}
	bounds, ok := n.attrs.Get(AttrBounds)
	if !ok {
		return
	}

	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(index)
	b.WriteString(") ")
	b.WriteString(ShortClassName(className))
	if text != "" {
		b.WriteByte(':')
		b.WriteString(text)
	}
	if contentDesc != "" {
		b.WriteString(" {")
		b.WriteString(contentDesc)
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(bounds)
	n.displayName = b.String()
}

// ShortClassName removes every occurrence of "android.widget." and then of
// "android.view." from a class name.
func ShortClassName(className string) string {
	className = strings.ReplaceAll(className, "android.widget.", "")
	return strings.ReplaceAll(className, "android.view.", "")
}
