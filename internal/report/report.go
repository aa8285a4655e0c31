// Package report renders a hierarchy as a nested outline for people to read.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/uidump/internal/hierarchy"
	"github.com/dgallion1/uidump/internal/uinode"
	"github.com/yuin/goldmark"
)

// Markdown returns a nested bullet list with one line per node: its ID,
// display label and selector.
func Markdown(tree *hierarchy.Tree, title string) string {
	var b strings.Builder
	if title == "" {
		title = "UI hierarchy"
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))
	if tree.Rotation != "" {
		fmt.Fprintf(&b, "Rotation: %s. Nodes: %d.\n\n", escape(tree.Rotation), tree.Len())
	} else {
		fmt.Fprintf(&b, "Nodes: %d.\n\n", tree.Len())
	}
	if len(tree.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range tree.Warnings {
			fmt.Fprintf(&b, "- %s\n", escape(w))
		}
		b.WriteString("\n## Nodes\n\n")
	}

	var walk func(nodes []*uinode.Node, depth int)
	walk = func(nodes []*uinode.Node, depth int) {
		for _, n := range nodes {
			b.WriteString(strings.Repeat("  ", depth))
			fmt.Fprintf(&b, "- %s %s", codeSpan(tree.ID(n)), escape(n.DisplayName()))
			if xp, err := n.IndexedXPath(); err == nil {
				fmt.Fprintf(&b, " %s", codeSpan(xp))
			} else if xp, err := n.XPath(); err == nil {
				fmt.Fprintf(&b, " %s", codeSpan(xp))
			}
			b.WriteByte('\n')
			walk(n.Children(), depth+1)
		}
	}
	walk(tree.Children, 0)
	return b.String()
}

// HTML renders Markdown to an HTML fragment.
func HTML(tree *hierarchy.Tree, title string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(tree, title)), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

const mdSpecial = "\\`*_[]<>&|#"

// lineBreaks folds the line breaks uiautomator keeps in text values into
// spaces so a label never leaves its bullet.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func escape(s string) string {
	var b strings.Builder
	for _, r := range lineBreaks.Replace(s) {
		if strings.ContainsRune(mdSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// codeSpan wraps s in a backtick fence longer than any backtick run inside it.
func codeSpan(s string) string {
	s = lineBreaks.Replace(s)
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}
