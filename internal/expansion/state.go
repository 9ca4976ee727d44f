// Package expansion tracks which nodes of a referral forest have their
// downline disclosed. State is a value: every operation returns a new State
// and never touches the forest.
package expansion

import (
	"encoding/json"

	"github.com/vanshika/referralnet/internal/tree"
)

// State maps node identifiers to their own disclosure flag.
type State struct {
	open map[string]bool
}

// Initialize returns a fully expanded state for the forest.
func Initialize(f *tree.Forest) State {
	return fill(f, true)
}

// ExpandAll discloses every node.
func ExpandAll(f *tree.Forest) State {
	return fill(f, true)
}

// CollapseAll hides every downline. Roots stay visible.
func CollapseAll(f *tree.Forest) State {
	return fill(f, false)
}

func fill(f *tree.Forest, value bool) State {
	ids := f.IDs()
	s := State{open: make(map[string]bool, len(ids))}
	for _, id := range ids {
		s.open[id] = value
	}
	return s
}

// Toggle flips the flag of exactly one node. Descendant flags are left alone,
// so re-expanding a parent brings back the downline as it was. Unknown
// identifiers leave the state unchanged.
func Toggle(s State, id string) State {
	next := s.clone()
	if cur, ok := next.open[id]; ok {
		next.open[id] = !cur
	}
	return next
}

// IsVisible reports whether a node is shown: every ancestor must be expanded.
// The node's own flag only governs its children.
func IsVisible(s State, f *tree.Forest, id string) bool {
	if _, ok := f.Find(id); !ok {
		return false
	}
	for _, ancestor := range f.Ancestors(id) {
		if !s.open[ancestor.ID()] {
			return false
		}
	}
	return true
}

// Expanded returns the node's own flag.
func (s State) Expanded(id string) bool {
	return s.open[id]
}

// Len returns the number of tracked nodes.
func (s State) Len() int {
	return len(s.open)
}

// Equal reports whether both states hold the same flags for the same nodes.
func (s State) Equal(other State) bool {
	if len(s.open) != len(other.open) {
		return false
	}
	for id, v := range s.open {
		ov, ok := other.open[id]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Flags returns a copy of the underlying mapping.
func (s State) Flags() map[string]bool {
	out := make(map[string]bool, len(s.open))
	for id, v := range s.open {
		out[id] = v
	}
	return out
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Flags())
}

func (s State) clone() State {
	return State{open: s.Flags()}
}
