package tree

import "github.com/shopspring/decimal"

// Annotate computes SubtreeSize and SubtreeIncome for every node with one
// post-order pass per root and returns the same forest. Children are summed in
// source order before the node's own income, in exact decimal arithmetic, so
// repeated calls on an unchanged forest yield identical figures.
func Annotate(f *Forest) *Forest {
	if f == nil {
		return f
	}
	for _, root := range f.roots {
		rollUp(root)
	}
	return f
}

func rollUp(n *Node) decimal.Decimal {
	size := 1
	income := decimal.Zero
	for _, child := range n.children {
		income = income.Add(rollUp(child))
		size += child.subtreeSize
	}
	income = income.Add(decimal.NewFromFloat(n.user.TotalIncome))

	n.subtreeSize = size
	n.subtreeExact = income
	n.subtreeIncome = income.InexactFloat64()
	return income
}
