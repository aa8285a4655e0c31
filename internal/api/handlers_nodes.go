package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/uidump/internal/hierarchy"
	"github.com/dgallion1/uidump/internal/uinode"
	"github.com/go-chi/chi/v5"
)

// nodeView is the JSON form of a single node.
type nodeView struct {
	ID           string                 `json:"id"`
	Label        string                 `json:"label"`
	Attributes   []uinode.AttributePair `json:"attributes"`
	HasBounds    bool                   `json:"has_bounds"`
	Bounds       *uinode.Rect           `json:"bounds,omitempty"`
	XPath        string                 `json:"xpath,omitempty"`
	IndexedXPath string                 `json:"indexed_xpath,omitempty"`
	Parent       string                 `json:"parent,omitempty"`
	Children     []string               `json:"children"`
}

func newNodeView(tree *hierarchy.Tree, n *uinode.Node) nodeView {
	v := nodeView{
		ID:         tree.ID(n),
		Label:      n.DisplayName(),
		Attributes: n.AttributesSnapshot(),
		HasBounds:  n.HasBounds,
		Children:   make([]string, 0, len(n.Children())),
	}
	if n.HasBounds {
		r := n.Rect
		v.Bounds = &r
	}
	v.XPath, _ = n.XPath()
	v.IndexedXPath, _ = n.IndexedXPath()
	if p := n.Parent(); p != nil {
		v.Parent = tree.ID(p)
	}
	for _, c := range n.Children() {
		v.Children = append(v.Children, tree.ID(c))
	}
	return v
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	tree, n := s.node(w, r)
	if n == nil {
		return
	}
	writeJSON(w, http.StatusOK, newNodeView(tree, n))
}

// handleXPath returns one selector; ?indexed=true adds the @index predicate.
func (s *Server) handleXPath(w http.ResponseWriter, r *http.Request) {
	_, n := s.node(w, r)
	if n == nil {
		return
	}
	indexed := r.URL.Query().Get("indexed") == "true"
	var (
		xp  string
		err error
	)
	if indexed {
		xp, err = n.IndexedXPath()
	} else {
		xp, err = n.XPath()
	}
	if err != nil {
		nodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"xpath": xp, "indexed": indexed})
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	_, n := s.node(w, r)
	if n == nil {
		return
	}
	pos, err := n.Position(r.Context(), s.resolution)
	if err != nil {
		s.log.Warn("position summary failed", "dump_id", chi.URLParam(r, "dumpID"), "node_id", chi.URLParam(r, "nodeID"), "error", err)
		nodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": pos.String(),
		"x":       pos.X,
		"y":       pos.Y,
		"x_pct":   pos.XPct,
		"y_pct":   pos.YPct,
	})
}

func (s *Server) handleNodesAt(w http.ResponseWriter, r *http.Request) {
	d := s.dump(w, r)
	if d == nil {
		return
	}
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		jsonError(w, "integer x and y query parameters are required", http.StatusBadRequest)
		return
	}
	hits := d.Tree.NodesAt(x, y)
	out := make([]nodeView, 0, len(hits))
	for _, n := range hits {
		out = append(out, newNodeView(d.Tree, n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"x": x, "y": y, "nodes": out})
}

// node looks up {dumpID}/{nodeID} and writes a 404 when either is unknown.
func (s *Server) node(w http.ResponseWriter, r *http.Request) (*hierarchy.Tree, *uinode.Node) {
	d := s.dump(w, r)
	if d == nil {
		return nil, nil
	}
	n := d.Tree.Node(chi.URLParam(r, "nodeID"))
	if n == nil {
		jsonError(w, "node not found", http.StatusNotFound)
		return nil, nil
	}
	return d.Tree, n
}

// nodeError maps node derivation errors to HTTP statuses.
func nodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, uinode.ErrMissingAttribute):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, uinode.ErrInvalidBounds):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, uinode.ErrResolutionUnavailable):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
