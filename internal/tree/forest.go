package tree

import "encoding/json"

// Forest is the ordered set of the caller's direct referrals with their full
// downlines. The caller is implicit and never appears as a node.
type Forest struct {
	roots []*Node
	index map[string]*Node
	order []string
}

func newForest() *Forest {
	return &Forest{index: make(map[string]*Node)}
}

// Roots returns the root-level nodes in source order. The slice is a copy.
func (f *Forest) Roots() []*Node {
	if f == nil {
		return nil
	}
	out := make([]*Node, len(f.roots))
	copy(out, f.roots)
	return out
}

// Len returns the number of nodes in the whole forest.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}

// Empty reports whether the caller has no referrals.
func (f *Forest) Empty() bool { return f.Len() == 0 }

// Find looks a node up by identifier.
func (f *Forest) Find(id string) (*Node, bool) {
	if f == nil {
		return nil, false
	}
	n, ok := f.index[id]
	return n, ok
}

// IDs returns every identifier in pre-order.
func (f *Forest) IDs() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.order...)
}

// Walk visits every node in pre-order, root by root.
func (f *Forest) Walk(fn func(*Node) bool) {
	if f == nil {
		return
	}
	for _, root := range f.roots {
		root.Walk(fn)
	}
}

// Ancestors returns the chain of recruiters above id, nearest first.
func (f *Forest) Ancestors(id string) []*Node {
	n, ok := f.Find(id)
	if !ok {
		return nil
	}
	var chain []*Node
	for p := n.parent; p != nil; p = p.parent {
		chain = append(chain, p)
	}
	return chain
}

// MarshalJSON renders the forest as an array of annotated root nodes.
func (f *Forest) MarshalJSON() ([]byte, error) {
	out := make([]*nodeJSON, 0, f.Len())
	if f != nil {
		for _, root := range f.roots {
			out = append(out, root.toJSON())
		}
	}
	return json.Marshal(out)
}

func (f *Forest) register(n *Node) {
	f.index[n.user.ID] = n
	f.order = append(f.order, n.user.ID)
}
