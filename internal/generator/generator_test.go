package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/referralnet/internal/domain"
)

func TestGenerateRespectsShape(t *testing.T) {
	gen := New(Config{NumUsers: 300, Roots: 3, MaxDepth: 4, MaxFanout: 3, MaxIncome: 100, Seed: 7})
	ds, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Accounts, 300)

	depth := map[string]int{}
	fanout := map[string]int{}
	roots := 0
	emails := map[string]bool{}
	for _, a := range ds.Accounts {
		if a.ReferrerID == "" {
			roots++
			depth[a.ID] = 0
		} else {
			parentDepth, ok := depth[a.ReferrerID]
			require.True(t, ok, "referrer %s must precede %s", a.ReferrerID, a.ID)
			depth[a.ID] = parentDepth + 1
			fanout[a.ReferrerID]++
		}
		assert.LessOrEqual(t, depth[a.ID], 4)
		assert.InDelta(t, a.ROIIncome+a.LevelIncome, a.TotalIncome, 0.005)
		assert.LessOrEqual(t, a.ROIIncome, 100.0)
		assert.False(t, emails[a.Email], "duplicate email %s", a.Email)
		emails[a.Email] = true
	}
	assert.Equal(t, 3, roots)
	for id, n := range fanout {
		assert.LessOrEqual(t, n, 3, "fanout of %s", id)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := Config{NumUsers: 50, Roots: 2, Seed: 99}
	a, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	b, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{NumUsers: 10, Seed: 1}).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPayloadNestsEveryAccount(t *testing.T) {
	ds, err := New(Config{NumUsers: 120, Roots: 4, Seed: 3}).Generate(context.Background())
	require.NoError(t, err)

	payload := Payload(ds, "")
	assert.Len(t, payload, 4)

	var count func(nodes []domain.RawNode) int
	count = func(nodes []domain.RawNode) int {
		n := 0
		for _, node := range nodes {
			n += 1 + count(node.Children)
		}
		return n
	}
	assert.Equal(t, 120, count(payload))
}

func TestWriteDatasetRoundTripsAccounts(t *testing.T) {
	ds, err := New(Config{NumUsers: 20, Roots: 2, Seed: 5}).Generate(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteDataset(ds, dir))

	_, err = os.Stat(filepath.Join(dir, PayloadFile))
	require.NoError(t, err)

	accounts, err := ReadAccounts(filepath.Join(dir, AccountsFile))
	require.NoError(t, err)
	require.Len(t, accounts, 20)
	assert.Equal(t, ds.Accounts[5].ID, accounts[5].ID)
	assert.Equal(t, ds.Accounts[5].ReferrerID, accounts[5].ReferrerID)
}
