package tree

import (
	"fmt"
	"math"
	"strings"

	"github.com/vanshika/referralnet/internal/domain"
)

// DefaultMaxDepth bounds how many levels of a payload are turned into nodes.
const DefaultMaxDepth = 64

// Options tunes BuildForest.
type Options struct {
	// MaxDepth is the number of levels kept. Nodes at depth >= MaxDepth are
	// truncated together with their subtrees. Non-positive means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// BuildForest converts the nested referral payload into a Forest. It never
// fails: defective nodes are repaired or dropped and each defect is reported
// in the returned diagnostics, so the valid part of a network always renders.
func BuildForest(raw []domain.RawNode, opts Options) (*Forest, domain.Diagnostics) {
	b := &builder{
		forest:   newForest(),
		seen:     make(map[string]struct{}),
		maxDepth: opts.maxDepth(),
	}

	for i := range raw {
		if n := b.build(&raw[i], nil, 0); n != nil {
			b.forest.roots = append(b.forest.roots, n)
		}
	}
	return b.forest, b.diags
}

type builder struct {
	forest   *Forest
	seen     map[string]struct{}
	maxDepth int
	diags    domain.Diagnostics
}

func (b *builder) build(raw *domain.RawNode, parent *Node, depth int) *Node {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		b.warn(domain.KindMalformedNode, parentID(parent), "id", depth,
			fmt.Sprintf("recruit without identifier dropped with %d direct recruits", len(raw.Children)))
		return nil
	}
	if _, dup := b.seen[id]; dup {
		b.warn(domain.KindDuplicateIdentifier, id, "", depth,
			"identifier already present in network; repeated subtree dropped")
		return nil
	}
	b.seen[id] = struct{}{}

	node := &Node{
		user:   b.sanitize(raw, id, depth),
		parent: parent,
		depth:  depth,
	}
	b.forest.register(node)

	if len(raw.Children) == 0 {
		return node
	}
	if depth+1 >= b.maxDepth {
		b.warn(domain.KindDepthLimitExceeded, id, "", depth,
			fmt.Sprintf("%d direct recruits beyond depth limit %d truncated", len(raw.Children), b.maxDepth))
		return node
	}

	node.children = make([]*Node, 0, len(raw.Children))
	for i := range raw.Children {
		if child := b.build(&raw.Children[i], node, depth+1); child != nil {
			node.children = append(node.children, child)
		}
	}
	return node
}

func (b *builder) sanitize(raw *domain.RawNode, id string, depth int) domain.ReferralUser {
	user := domain.ReferralUser{
		ID:          id,
		Name:        strings.TrimSpace(raw.Name),
		Email:       strings.TrimSpace(raw.Email),
		TotalIncome: b.amount(id, "totalIncome", depth, raw.TotalIncome),
		ROIIncome:   b.amount(id, "roiIncome", depth, raw.ROIIncome),
		LevelIncome: b.amount(id, "levelIncome", depth, raw.LevelIncome),
	}
	if user.Name == "" {
		user.Name = id
		b.warn(domain.KindMalformedNode, id, "name", depth, "missing name; identifier used instead")
	}
	if user.Email == "" {
		b.warn(domain.KindMalformedNode, id, "email", depth, "missing email")
	}
	return user
}

func (b *builder) amount(id, field string, depth int, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		b.warn(domain.KindMalformedNode, id, field, depth,
			fmt.Sprintf("invalid amount %v replaced with 0", v))
		return 0
	}
	return v
}

func (b *builder) warn(kind domain.DiagnosticKind, id, field string, depth int, msg string) {
	b.diags = append(b.diags, domain.Diagnostic{
		Kind:    kind,
		NodeID:  id,
		Field:   field,
		Depth:   depth,
		Message: msg,
	})
}

func parentID(parent *Node) string {
	if parent == nil {
		return ""
	}
	return parent.user.ID
}
