package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/logging"
	"github.com/vanshika/referralnet/internal/tree"
)

func samplePayload() []domain.RawNode {
	return []domain.RawNode{
		{ID: "A", Name: "Ann", Email: "a@x", TotalIncome: 10, Children: []domain.RawNode{
			{ID: "B", Name: "Ben", Email: "b@x", TotalIncome: 5, Children: []domain.RawNode{
				{ID: "C", Name: "Cat", Email: "c@x", TotalIncome: 2},
			}},
			{ID: "D", Name: "Dan", Email: "d@x", TotalIncome: 1},
		}},
		{ID: "E", Name: "Eve", Email: "e@x", TotalIncome: 7},
	}
}

func staticFetcher(nodes []domain.RawNode, err error) FetcherFunc {
	return func(context.Context) ([]domain.RawNode, error) { return nodes, err }
}

type recordingObserver struct {
	builds int
	nodes  int
	diags  int
}

func (r *recordingObserver) ObserveBuild(f *tree.Forest, diags domain.Diagnostics, _ time.Duration) {
	r.builds++
	r.nodes = f.Len()
	r.diags = len(diags)
}

func TestReferralService_LoadBuildsAnnotatedExpandedView(t *testing.T) {
	svc := NewReferralService(logging.Discard(), 0)
	obs := &recordingObserver{}
	svc.WithObserver(obs)

	view, err := svc.Load(context.Background(), staticFetcher(samplePayload(), nil))
	require.NoError(t, err)

	assert.Equal(t, 5, view.Forest.Len())
	assert.True(t, view.Diagnostics.Empty())
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		assert.True(t, view.State.Expanded(id), id)
		assert.True(t, view.IsVisible(id), id)
	}

	a, ok := view.Forest.Find("A")
	require.True(t, ok)
	assert.Equal(t, 4, a.SubtreeSize())
	assert.Equal(t, 18.0, a.SubtreeIncome())

	assert.Equal(t, 1, obs.builds)
	assert.Equal(t, 5, obs.nodes)
}

func TestReferralService_ToggleHidesDescendants(t *testing.T) {
	view, err := NewReferralService(nil, 0).Load(context.Background(), staticFetcher(samplePayload(), nil))
	require.NoError(t, err)

	view.Toggle("A")
	assert.True(t, view.IsVisible("A"))
	assert.True(t, view.IsVisible("E"))
	for _, id := range []string{"B", "C", "D"} {
		assert.False(t, view.IsVisible(id), id)
	}
	assert.Len(t, view.VisibleRows(), 2)
	assert.Len(t, view.Rows(), 5)

	view.Toggle("A")
	assert.Len(t, view.VisibleRows(), 5)

	view.CollapseAll()
	assert.Len(t, view.VisibleRows(), 2)
	view.ExpandAll()
	assert.Len(t, view.VisibleRows(), 5)
}

func TestReferralService_LoadUnauthenticated(t *testing.T) {
	svc := NewReferralService(logging.Discard(), 0)
	view, err := svc.Load(context.Background(), staticFetcher(nil, fmt.Errorf("fetch: %w", domain.ErrUnauthenticated)))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
	require.NotNil(t, view)
	assert.True(t, view.Forest.Empty())
	assert.True(t, view.Diagnostics.Empty())
}

func TestReferralService_LoadTransportError(t *testing.T) {
	svc := NewReferralService(logging.Discard(), 0)
	view, err := svc.Load(context.Background(), staticFetcher(nil, errors.New("connection refused")))
	assert.Nil(t, view)
	assert.ErrorContains(t, err, "connection refused")
	assert.False(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestReferralService_LoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := NewReferralService(nil, 0).Load(ctx, FetcherFunc(func(context.Context) ([]domain.RawNode, error) {
		called = true
		return nil, nil
	}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestReferralService_RefetchStartsFresh(t *testing.T) {
	svc := NewReferralService(nil, 0)
	first, err := svc.Load(context.Background(), staticFetcher(samplePayload(), nil))
	require.NoError(t, err)
	first.Toggle("A")

	second, err := svc.Load(context.Background(), staticFetcher(samplePayload(), nil))
	require.NoError(t, err)
	assert.True(t, second.State.Expanded("A"))
	assert.False(t, first.State.Expanded("A"))
	assert.NotSame(t, first.Forest, second.Forest)
}

func TestReferralService_MaxDepthReportsTruncation(t *testing.T) {
	svc := NewReferralService(nil, 2)
	view := svc.Build(samplePayload())

	_, ok := view.Forest.Find("C")
	assert.False(t, ok)
	assert.Equal(t, 1, view.Diagnostics.Count(domain.KindDepthLimitExceeded))
}

func TestView_TeamsAndDashboard(t *testing.T) {
	view := NewReferralService(nil, 0).Build(samplePayload())

	teams := view.Teams()
	require.Len(t, teams, 2)
	assert.Equal(t, domain.TeamSummary{RootID: "A", RootName: "Ann", TeamSize: 4, TeamIncome: 18, MaxDepth: 2, DirectRecruit: 2}, teams[0])
	assert.Equal(t, domain.TeamSummary{RootID: "E", RootName: "Eve", TeamSize: 1, TeamIncome: 7}, teams[1])

	dash := view.Dashboard(domain.Account{ID: "ME", Name: "Me", ReferralCode: "ME000001", ROIIncome: 3, LevelIncome: 4, TotalIncome: 7})
	assert.Equal(t, 5, dash.TeamSize)
	assert.Equal(t, 25.0, dash.TeamIncome)
	assert.Equal(t, "ME000001", dash.ReferralCode)
	assert.Equal(t, 7.0, dash.User.TotalIncome)
	assert.Zero(t, dash.Diagnostics)
}

func TestView_EmptyForest(t *testing.T) {
	view := NewReferralService(nil, 0).Build(nil)
	assert.Empty(t, view.Teams())
	assert.Empty(t, view.Rows())
	assert.Zero(t, view.Dashboard(domain.Account{ID: "ME"}).TeamSize)
}
