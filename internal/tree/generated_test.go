package tree_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/referralnet/internal/generator"
	"github.com/vanshika/referralnet/internal/tree"
)

func TestBuildForest_GeneratedNetworks(t *testing.T) {
	for _, cfg := range []generator.Config{
		{NumUsers: 1, Roots: 1, Seed: 1},
		{NumUsers: 200, Roots: 3, MaxDepth: 10, MaxFanout: 4, Seed: 2},
		{NumUsers: 500, Roots: 1, MaxDepth: 30, MaxFanout: 2, Seed: 3},
	} {
		ds, err := generator.New(cfg).Generate(context.Background())
		require.NoError(t, err)

		forest, diags := tree.BuildForest(generator.Payload(ds, ""), tree.Options{})
		require.True(t, diags.Empty(), "seed %d: %v", cfg.Seed, diags)
		tree.Annotate(forest)

		assert.Equal(t, len(ds.Accounts), forest.Len())

		want := decimal.Zero
		for _, a := range ds.Accounts {
			want = want.Add(decimal.NewFromFloat(a.TotalIncome))
		}
		size := 0
		got := decimal.Zero
		for _, root := range forest.Roots() {
			size += root.SubtreeSize()
			got = got.Add(decimal.NewFromFloat(root.SubtreeIncome()))
		}
		assert.Equal(t, forest.Len(), size)
		assert.True(t, want.Equal(got), "seed %d: want %s got %s", cfg.Seed, want, got)
	}
}
