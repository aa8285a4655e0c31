package uinode

import "strings"

var (
	textEscaper        = strings.NewReplacer(`"`, `\"`)
	contentDescEscaper = strings.NewReplacer(`'`, `\'`)
)

// predicates accumulates "[@a=".." and @b=".."]" clauses after a path step.
type predicates struct {
	b    strings.Builder
	open bool
}

func (p *predicates) add(attr, value string) {
	if p.open {
		p.b.WriteString(" and @")
	} else {
		p.b.WriteString("[@")
		p.open = true
	}
	p.b.WriteString(attr)
	p.b.WriteString(`="`)
	p.b.WriteString(value)
	p.b.WriteByte('"')
}

func (p *predicates) String() string {
	if !p.open {
		return ""
	}
	return p.b.String() + "]"
}

// XPath returns "/<class>" followed by text and content-desc predicates for
// whichever of the two are non-empty. The node must carry class and
// content-desc.
func (n *Node) XPath() (string, error) {
	return n.selector(false)
}

// IndexedXPath is XPath with an additional @index predicate, for telling
// apart siblings that share class, text and content-desc. The node must
// carry class, content-desc and index.
func (n *Node) IndexedXPath() (string, error) {
	return n.selector(true)
}

func (n *Node) selector(withIndex bool) (string, error) {
	className, err := n.require(AttrClass)
	if err != nil {
		return "", err
	}
	contentDesc, err := n.require(AttrContentDesc)
	if err != nil {
		return "", err
	}
	var index string
	if withIndex {
		if index, err = n.require(AttrIndex); err != nil {
			return "", err
		}
	}

	var p predicates
	if text, _ := n.attrs.Get(AttrText); text != "" {
		p.add(AttrText, textEscaper.Replace(text))
	}
	if contentDesc != "" {
		p.add(AttrContentDesc, contentDescEscaper.Replace(contentDesc))
	}
	if index != "" {
		p.add(AttrIndex, index)
	}
	return "/" + className + p.String(), nil
}
