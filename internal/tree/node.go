// Package tree holds the referral network model: the node and forest types,
// the builder that turns an untrusted nested payload into a forest, and the
// aggregator that rolls team metrics up the hierarchy.
package tree

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/vanshika/referralnet/internal/domain"
)

// Node is one referred user and its recruits. A Node is immutable once the
// builder returns it; only Annotate writes the derived aggregates.
type Node struct {
	user     domain.ReferralUser
	children []*Node
	parent   *Node
	depth    int

	subtreeSize   int
	subtreeIncome float64
	subtreeExact  decimal.Decimal
}

// User returns the wrapped payload.
func (n *Node) User() domain.ReferralUser { return n.user }

// ID returns the node identifier.
func (n *Node) ID() string { return n.user.ID }

// Depth is 0 for direct referrals of the caller.
func (n *Node) Depth() int { return n.depth }

// Children returns the recruits in the order the referral service listed them.
// The returned slice is a copy.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// HasChildren reports whether the node recruited anyone.
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

// Parent returns the recruiting node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// SubtreeSize counts the node and all of its descendants. Zero until annotated.
func (n *Node) SubtreeSize() int { return n.subtreeSize }

// SubtreeIncome sums TotalIncome over the node and all of its descendants.
// Zero until annotated. The value is SubtreeIncomeDecimal rounded to the
// nearest float64, so the roll-up identity against the children's float64
// figures holds only to within float rounding; use SubtreeIncomeDecimal for an
// exact identity.
func (n *Node) SubtreeIncome() float64 { return n.subtreeIncome }

// SubtreeIncomeDecimal is the exact decimal sum behind SubtreeIncome.
func (n *Node) SubtreeIncomeDecimal() decimal.Decimal { return n.subtreeExact }

// Equal compares nodes by identifier.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.user.ID == other.user.ID
}

// Walk visits the node and its descendants in pre-order. Returning false from
// fn skips that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

type nodeJSON struct {
	domain.ReferralUser
	Depth         int         `json:"depth"`
	SubtreeSize   int         `json:"subtreeSize"`
	SubtreeIncome float64     `json:"subtreeIncome"`
	Children      []*nodeJSON `json:"children"`
}

func (n *Node) toJSON() *nodeJSON {
	out := &nodeJSON{
		ReferralUser:  n.user,
		Depth:         n.depth,
		SubtreeSize:   n.subtreeSize,
		SubtreeIncome: n.subtreeIncome,
		Children:      make([]*nodeJSON, 0, len(n.children)),
	}
	for _, child := range n.children {
		out.Children = append(out.Children, child.toJSON())
	}
	return out
}

// MarshalJSON renders the node with its derived aggregates and subtree.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}
