package expansion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows_PreOrderWithVisibility(t *testing.T) {
	f := sampleForest(t)
	s := Toggle(Initialize(f), "B")

	rows := Rows(f, s)
	require.Len(t, rows, 5)

	var ids []string
	for _, r := range rows {
		ids = append(ids, r.User.ID)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, ids)

	byID := map[string]Row{}
	for _, r := range rows {
		byID[r.User.ID] = r
		assert.Equal(t, IsVisible(s, f, r.User.ID), r.Visible, r.User.ID)
	}
	assert.False(t, byID["B"].Expanded)
	assert.True(t, byID["B"].HasChildren)
	assert.False(t, byID["C"].Visible)
	assert.False(t, byID["E"].HasChildren)
	assert.Equal(t, 18.0, byID["A"].SubtreeIncome)
	assert.Equal(t, 4, byID["A"].SubtreeSize)
}

func TestVisibleRows(t *testing.T) {
	f := sampleForest(t)

	rows := VisibleRows(f, CollapseAll(f))
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].User.ID)
	assert.Equal(t, "E", rows[1].User.ID)

	assert.Len(t, VisibleRows(f, Initialize(f)), f.Len())
}

func TestStateMarshalJSON(t *testing.T) {
	f := sampleForest(t)
	data, err := json.Marshal(Toggle(Initialize(f), "A"))
	require.NoError(t, err)

	var flags map[string]bool
	require.NoError(t, json.Unmarshal(data, &flags))
	assert.False(t, flags["A"])
	assert.True(t, flags["E"])
}
