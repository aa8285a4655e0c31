package hierarchy

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/uidump/internal/uinode"
)

var (
	ErrNoHierarchy = errors.New("no <hierarchy> element")
	ErrUnbalanced  = errors.New("unbalanced <node> elements")
)

// Options controls how a dump is loaded.
type Options struct {
	// Strict aborts the load on the first node whose bounds do not parse.
	// Otherwise the node is kept without bounds and a warning is recorded.
	Strict bool
	Log    *slog.Logger
}

// ParseFile loads a dump from disk.
func ParseFile(path string, opts Options) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, opts)
}

// Parse reads a uiautomator hierarchy dump. Attributes are applied to each
// node in document order with their names exactly as written. Anything
// after </hierarchy> is ignored.
func Parse(r io.Reader, opts Options) (*Tree, error) {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	tree := &Tree{}
	var stack []*uinode.Node
	sawHierarchy := false
	count := 0

	// open creates a node from a <node> element and attaches it to the
	// current parent.
	open := func(el xml.StartElement) (*uinode.Node, error) {
		n := uinode.New()
		count++
		for _, a := range el.Attr {
			err := n.SetAttribute(attrName(a.Name), a.Value)
			if err == nil {
				continue
			}
			if opts.Strict {
				return nil, fmt.Errorf("node %d: %w", count, err)
			}
			msg := fmt.Sprintf("node %d: %v", count, err)
			tree.Warnings = append(tree.Warnings, msg)
			log.Warn("keeping node without bounds", "node", count, "error", err)
		}
		if len(stack) > 0 {
			stack[len(stack)-1].AddChild(n)
		} else {
			tree.Children = append(tree.Children, n)
		}
		return n, nil
	}

	dec := xml.NewDecoder(r)
loop:
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if sawHierarchy && errors.As(err, new(*xml.SyntaxError)) {
				return nil, fmt.Errorf("read dump: %w: %w", ErrUnbalanced, err)
			}
			return nil, fmt.Errorf("read dump: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "hierarchy":
				sawHierarchy = true
				for _, a := range t.Attr {
					if a.Name.Local == "rotation" {
						tree.Rotation = a.Value
					}
				}
			case "node":
				if !sawHierarchy {
					return nil, fmt.Errorf("<node> before <hierarchy>: %w", ErrNoHierarchy)
				}
				n, err := open(t)
				if err != nil {
					return nil, err
				}
				stack = append(stack, n)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "node":
				if len(stack) == 0 {
					return nil, fmt.Errorf("unexpected </node>: %w", ErrUnbalanced)
				}
				stack = stack[:len(stack)-1]
			case "hierarchy":
				// Text after the root, such as adb's "UI hierchary dumped
				// to" trailer, is never read.
				break loop
			}
		}
	}

	if !sawHierarchy {
		return nil, ErrNoHierarchy
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%d unclosed <node>: %w", len(stack), ErrUnbalanced)
	}

	tree.index()
	log.Debug("hierarchy loaded", "nodes", tree.Len(), "warnings", len(tree.Warnings))
	return tree, nil
}

// attrName returns the attribute name as written, keeping any prefix.
func attrName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
