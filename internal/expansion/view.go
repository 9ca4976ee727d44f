package expansion

import (
	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/tree"
)

// Row is the per-node view model handed to a renderer.
type Row struct {
	Node          *tree.Node          `json:"-"`
	User          domain.ReferralUser `json:"user"`
	Depth         int                 `json:"depth"`
	SubtreeSize   int                 `json:"subtreeSize"`
	SubtreeIncome float64             `json:"subtreeIncome"`
	Visible       bool                `json:"visible"`
	Expanded      bool                `json:"expanded"`
	HasChildren   bool                `json:"hasChildren"`
}

// Rows combines the forest with a state into one row per node, in pre-order.
func Rows(f *tree.Forest, s State) []Row {
	rows := make([]Row, 0, f.Len())
	for _, root := range f.Roots() {
		appendRows(&rows, root, s, true)
	}
	return rows
}

// VisibleRows returns only the rows a renderer should draw.
func VisibleRows(f *tree.Forest, s State) []Row {
	all := Rows(f, s)
	out := all[:0]
	for _, r := range all {
		if r.Visible {
			out = append(out, r)
		}
	}
	return out
}

func appendRows(rows *[]Row, n *tree.Node, s State, visible bool) {
	expanded := s.Expanded(n.ID())
	*rows = append(*rows, Row{
		Node:          n,
		User:          n.User(),
		Depth:         n.Depth(),
		SubtreeSize:   n.SubtreeSize(),
		SubtreeIncome: n.SubtreeIncome(),
		Visible:       visible,
		Expanded:      expanded,
		HasChildren:   n.HasChildren(),
	})
	for _, child := range n.Children() {
		appendRows(rows, child, s, visible && expanded)
	}
}
