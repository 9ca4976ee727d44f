package tree

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/referralnet/internal/domain"
)

func leaf(id string, income float64) domain.RawNode {
	return domain.RawNode{ID: id, Name: "user " + id, Email: id + "@x.com", TotalIncome: income}
}

func TestBuildForest_EndToEndExample(t *testing.T) {
	raw := []domain.RawNode{{
		ID: "A", Name: "Alice", Email: "a@x.com", TotalIncome: 100,
		Children: []domain.RawNode{{ID: "B", Name: "Bob", Email: "b@x.com", TotalIncome: 50, Children: []domain.RawNode{}}},
	}}

	forest, diags := BuildForest(raw, Options{})
	Annotate(forest)

	require.True(t, diags.Empty())
	require.Len(t, forest.Roots(), 1)

	a := forest.Roots()[0]
	assert.Equal(t, "A", a.ID())
	assert.Equal(t, 0, a.Depth())
	assert.Equal(t, 2, a.SubtreeSize())
	assert.Equal(t, 150.0, a.SubtreeIncome())

	b, ok := forest.Find("B")
	require.True(t, ok)
	assert.Equal(t, 1, b.Depth())
	assert.Equal(t, 1, b.SubtreeSize())
	assert.Equal(t, 50.0, b.SubtreeIncome())
	assert.True(t, b.Parent().Equal(a))
	assert.Equal(t, []string{"A", "B"}, forest.IDs())
}

func TestBuildForest_PreservesChildOrder(t *testing.T) {
	raw := []domain.RawNode{{
		ID: "root", Name: "Root", Email: "r@x.com",
		Children: []domain.RawNode{leaf("z", 1), leaf("a", 2), leaf("m", 3)},
	}}

	forest, _ := BuildForest(raw, Options{})
	var ids []string
	for _, c := range forest.Roots()[0].Children() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestBuildForest_DuplicateSiblingDropped(t *testing.T) {
	dup := leaf("B", 10)
	dup.Children = []domain.RawNode{leaf("C", 5)}
	raw := []domain.RawNode{{
		ID: "A", Name: "Alice", Email: "a@x.com",
		Children: []domain.RawNode{leaf("B", 10), dup},
	}}

	forest, diags := BuildForest(raw, Options{})

	assert.Equal(t, 2, forest.Len())
	assert.Len(t, forest.Roots()[0].Children(), 1)
	_, hasC := forest.Find("C")
	assert.False(t, hasC, "subtree of the repeated identifier must not be inserted")
	require.Len(t, diags, 1)
	assert.Equal(t, domain.KindDuplicateIdentifier, diags[0].Kind)
	assert.Equal(t, "B", diags[0].NodeID)
}

func TestBuildForest_DuplicateAcrossRootsAndSelfReference(t *testing.T) {
	self := leaf("A", 1)
	self.Children = []domain.RawNode{leaf("A", 1)}
	raw := []domain.RawNode{self, leaf("A", 7)}

	forest, diags := BuildForest(raw, Options{})

	assert.Equal(t, 1, forest.Len())
	assert.Equal(t, 2, diags.Count(domain.KindDuplicateIdentifier))
}

func TestBuildForest_NegativeIncomeRepaired(t *testing.T) {
	raw := []domain.RawNode{leaf("A", -5)}

	forest, diags := BuildForest(raw, Options{})

	a, ok := forest.Find("A")
	require.True(t, ok)
	assert.Equal(t, 0.0, a.User().TotalIncome)
	require.Len(t, diags, 1)
	assert.Equal(t, domain.KindMalformedNode, diags[0].Kind)
	assert.Equal(t, "totalIncome", diags[0].Field)
}

func TestBuildForest_NonFiniteIncomeRepaired(t *testing.T) {
	nan := leaf("A", math.NaN())
	inf := leaf("B", math.Inf(1))
	inf.ROIIncome = -1

	forest, diags := BuildForest([]domain.RawNode{nan, inf}, Options{})

	assert.Equal(t, 2, forest.Len())
	assert.Equal(t, 3, diags.Count(domain.KindMalformedNode))
	b, _ := forest.Find("B")
	assert.Equal(t, 0.0, b.User().TotalIncome)
	assert.Equal(t, 0.0, b.User().ROIIncome)
}

func TestBuildForest_MissingNameAndEmail(t *testing.T) {
	forest, diags := BuildForest([]domain.RawNode{{ID: " A ", TotalIncome: 1}}, Options{})

	a, ok := forest.Find("A")
	require.True(t, ok)
	assert.Equal(t, "A", a.User().Name)
	assert.Equal(t, 2, diags.Count(domain.KindMalformedNode))
}

func TestBuildForest_EmptyIdentifierDropped(t *testing.T) {
	orphan := domain.RawNode{Name: "ghost", Children: []domain.RawNode{leaf("X", 1)}}
	raw := []domain.RawNode{{ID: "A", Name: "Alice", Email: "a@x.com", Children: []domain.RawNode{orphan, leaf("B", 1)}}}

	forest, diags := BuildForest(raw, Options{})

	assert.Equal(t, []string{"A", "B"}, forest.IDs())
	require.Len(t, diags, 1)
	assert.Equal(t, domain.KindMalformedNode, diags[0].Kind)
	assert.Equal(t, "A", diags[0].NodeID)
	assert.Equal(t, "id", diags[0].Field)
}

func TestBuildForest_DepthLimitTruncatesBranch(t *testing.T) {
	raw := []domain.RawNode{chain(10)}

	forest, diags := BuildForest(raw, Options{MaxDepth: 4})

	assert.Equal(t, 4, forest.Len())
	deepest, ok := forest.Find("n3")
	require.True(t, ok)
	assert.Equal(t, 3, deepest.Depth())
	assert.False(t, deepest.HasChildren())
	require.Len(t, diags, 1)
	assert.Equal(t, domain.KindDepthLimitExceeded, diags[0].Kind)
	assert.Equal(t, "n3", diags[0].NodeID)
}

func TestBuildForest_DefaultDepthLimit(t *testing.T) {
	forest, diags := BuildForest([]domain.RawNode{chain(DefaultMaxDepth + 5)}, Options{})

	assert.Equal(t, DefaultMaxDepth, forest.Len())
	assert.Equal(t, 1, diags.Count(domain.KindDepthLimitExceeded))
}

func TestBuildForest_Deterministic(t *testing.T) {
	raw := synthetic(7, 3, 42)

	first, firstDiags := BuildForest(raw, Options{})
	second, secondDiags := BuildForest(raw, Options{})
	Annotate(first)
	Annotate(second)

	assert.Equal(t, first.IDs(), second.IDs())
	assert.Equal(t, firstDiags, secondDiags)
	assert.Equal(t, snapshot(first), snapshot(second))
}

func TestBuildForest_EmptyPayload(t *testing.T) {
	forest, diags := BuildForest(nil, Options{})
	assert.True(t, forest.Empty())
	assert.True(t, diags.Empty())
	assert.Empty(t, forest.Roots())
}

// chain returns a single branch n0 -> n1 -> ... of the given length.
func chain(length int) domain.RawNode {
	node := leaf(fmt.Sprintf("n%d", length-1), 1)
	for i := length - 2; i >= 0; i-- {
		parent := leaf(fmt.Sprintf("n%d", i), 1)
		parent.Children = []domain.RawNode{node}
		node = parent
	}
	return node
}

func TestBuildForest_BadlyTypedWireNodeKeepsTeam(t *testing.T) {
	payload := `[{"id":"A","name":"Ann","email":"a@x.com","totalIncome":3,"children":[
		{"id":"B","name":"Ben","email":"b@x.com","totalIncome":1},
		{"id":7,"name":{"first":"Sev"},"email":"s@x.com","totalIncome":2},
		{"id":true,"name":"Nobody","email":"n@x.com"},
		"garbage"
	]}]`

	var raw []domain.RawNode
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	forest, diags := BuildForest(raw, Options{})
	Annotate(forest)

	assert.Equal(t, []string{"A", "B", "7"}, forest.IDs())
	seven, ok := forest.Find("7")
	require.True(t, ok)
	assert.Equal(t, "7", seven.User().Name)

	a, _ := forest.Find("A")
	assert.Equal(t, 3, a.SubtreeSize())
	assert.InDelta(t, 6.0, a.SubtreeIncome(), 1e-9)
	// name of 7, plus the two recruits without identifiers.
	assert.Equal(t, 3, diags.Count(domain.KindMalformedNode))
}
