package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/expansion"
	"github.com/vanshika/referralnet/internal/logging"
	"github.com/vanshika/referralnet/internal/tree"
)

// Fetcher supplies the caller's raw referral payload.
type Fetcher interface {
	FetchReferrals(ctx context.Context) ([]domain.RawNode, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]domain.RawNode, error)

func (f FetcherFunc) FetchReferrals(ctx context.Context) ([]domain.RawNode, error) {
	return f(ctx)
}

// BuildObserver is notified after every forest build.
type BuildObserver interface {
	ObserveBuild(f *tree.Forest, diags domain.Diagnostics, elapsed time.Duration)
}

// ReferralService turns fetched payloads into annotated, expandable views.
type ReferralService struct {
	logger   *slog.Logger
	opts     tree.Options
	observer BuildObserver
	nowFn    func() time.Time
}

// NewReferralService constructs a ReferralService. maxDepth <= 0 selects
// tree.DefaultMaxDepth.
func NewReferralService(logger *slog.Logger, maxDepth int) *ReferralService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ReferralService{
		logger: logger,
		opts:   tree.Options{MaxDepth: maxDepth},
		nowFn:  time.Now,
	}
}

// WithObserver registers a build observer.
func (s *ReferralService) WithObserver(o BuildObserver) {
	s.observer = o
}

// WithClock overrides the time provider (used primarily in tests).
func (s *ReferralService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Load fetches once and returns a brand-new View. When the identity
// collaborator rejects the session the returned View is empty and the error
// wraps domain.ErrUnauthenticated. Other fetch failures return no View.
func (s *ReferralService) Load(ctx context.Context, src Fetcher) (*View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := src.FetchReferrals(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return s.Build(nil), err
		}
		return nil, fmt.Errorf("fetch referrals: %w", err)
	}
	return s.Build(raw), nil
}

// Build validates and annotates raw, and starts it fully expanded.
func (s *ReferralService) Build(raw []domain.RawNode) *View {
	start := time.Now()
	forest, diags := tree.BuildForest(raw, s.opts)
	tree.Annotate(forest)
	elapsed := time.Since(start)

	logging.LogDiagnostics(s.logger, diags)
	s.logger.Debug("referral forest built",
		"roots", len(forest.Roots()),
		"nodes", forest.Len(),
		"diagnostics", len(diags),
		"duration_ms", elapsed.Milliseconds(),
	)
	if s.observer != nil {
		s.observer.ObserveBuild(forest, diags, elapsed)
	}

	return &View{
		Forest:      forest,
		State:       expansion.Initialize(forest),
		Diagnostics: diags,
		LoadedAt:    s.nowFn().UTC(),
	}
}

// View is one loaded referral network together with its disclosure state.
// The forest is read-only; only State changes between renders.
type View struct {
	Forest      *tree.Forest
	State       expansion.State
	Diagnostics domain.Diagnostics
	LoadedAt    time.Time
}

// Toggle flips the expansion flag of id.
func (v *View) Toggle(id string) {
	v.State = expansion.Toggle(v.State, id)
}

// ExpandAll opens every node.
func (v *View) ExpandAll() {
	v.State = expansion.ExpandAll(v.Forest)
}

// CollapseAll closes every node.
func (v *View) CollapseAll() {
	v.State = expansion.CollapseAll(v.Forest)
}

// IsVisible reports whether id is shown under the current state.
func (v *View) IsVisible(id string) bool {
	return expansion.IsVisible(v.State, v.Forest, id)
}

// Rows returns the pre-order view model for every node.
func (v *View) Rows() []expansion.Row {
	return expansion.Rows(v.Forest, v.State)
}

// VisibleRows returns only the rows currently shown.
func (v *View) VisibleRows() []expansion.Row {
	return expansion.VisibleRows(v.Forest, v.State)
}

// Teams summarises each direct referral's downline.
func (v *View) Teams() []domain.TeamSummary {
	roots := v.Forest.Roots()
	teams := make([]domain.TeamSummary, 0, len(roots))
	for _, root := range roots {
		deepest := root.Depth()
		root.Walk(func(n *tree.Node) bool {
			if n.Depth() > deepest {
				deepest = n.Depth()
			}
			return true
		})
		teams = append(teams, domain.TeamSummary{
			RootID:        root.ID(),
			RootName:      root.User().Name,
			TeamSize:      root.SubtreeSize(),
			TeamIncome:    root.SubtreeIncome(),
			MaxDepth:      deepest - root.Depth(),
			DirectRecruit: len(root.Children()),
		})
	}
	return teams
}

// Dashboard combines the account's own incomes with its network totals.
func (v *View) Dashboard(acct domain.Account) domain.Dashboard {
	teams := v.Teams()
	size := 0
	income := decimal.Zero
	for _, t := range teams {
		size += t.TeamSize
		income = income.Add(decimal.NewFromFloat(t.TeamIncome))
	}
	return domain.Dashboard{
		User:         acct.ReferralUser(),
		ReferralCode: acct.ReferralCode,
		TeamSize:     size,
		TeamIncome:   income.InexactFloat64(),
		Teams:        teams,
		Diagnostics:  len(v.Diagnostics),
	}
}
