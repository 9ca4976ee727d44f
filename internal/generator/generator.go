package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/repository"
	"github.com/vanshika/referralnet/internal/service"
)

// Dataset contains the generated accounts in referral order: every referrer
// precedes its recruits.
type Dataset struct {
	Accounts []service.AccountInput `json:"accounts"`
}

// Generator produces synthetic referral networks.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumUsers <= 0 {
		cfg.NumUsers = def.NumUsers
	}
	if cfg.Roots <= 0 {
		cfg.Roots = def.Roots
	}
	if cfg.Roots > cfg.NumUsers {
		cfg.Roots = cfg.NumUsers
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.MaxFanout <= 0 {
		cfg.MaxFanout = def.MaxFanout
	}
	if cfg.MaxIncome <= 0 {
		cfg.MaxIncome = def.MaxIncome
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

type slot struct {
	id       string
	depth    int
	children int
}

// Generate synthesises the accounts. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	accounts := make([]service.AccountInput, 0, g.cfg.NumUsers)
	open := make([]*slot, 0, g.cfg.NumUsers)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < g.cfg.NumUsers; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		userID := fmt.Sprintf("USR-%06d", i+1)
		depth := 0
		referrerID := ""
		if i >= g.cfg.Roots && len(open) > 0 {
			idx := g.pickReferrer(len(open))
			parent := open[idx]
			referrerID = parent.id
			depth = parent.depth + 1
			parent.children++
			if parent.children >= g.cfg.MaxFanout {
				open = append(open[:idx], open[idx+1:]...)
			}
		}
		if depth < g.cfg.MaxDepth {
			open = append(open, &slot{id: userID, depth: depth})
		}

		first, last := g.randomName()
		createdAt := base.Add(time.Duration(i) * time.Hour)
		roi := g.randomAmount()
		level := 0.0
		if depth < g.cfg.MaxDepth {
			level = g.randomAmount()
		}

		accounts = append(accounts, service.AccountInput{
			ID:           userID,
			Name:         first + " " + last,
			Email:        g.email(first, last, i+1),
			PasswordHash: g.cfg.PasswordHash,
			ReferrerID:   referrerID,
			ROIIncome:    roi,
			LevelIncome:  level,
			TotalIncome:  roundCents(roi + level),
			CreatedAt:    &createdAt,
			UpdatedAt:    &createdAt,
		})
	}

	return Dataset{Accounts: accounts}, nil
}

// pickReferrer favours recently joined users, which yields deep, uneven
// branches rather than a balanced tree.
func (g *Generator) pickReferrer(n int) int {
	if g.rand.Float64() < 0.6 {
		window := n / 4
		if window < 1 {
			window = 1
		}
		return n - 1 - g.rand.Intn(window)
	}
	return g.rand.Intn(n)
}

func (g *Generator) randomName() (string, string) {
	return g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))]
}

func (g *Generator) email(first, last string, n int) string {
	host := g.nameFragments.domains[g.rand.Intn(len(g.nameFragments.domains))]
	return fmt.Sprintf("%s.%s.%d@%s", strings.ToLower(first), strings.ToLower(last), n, host)
}

func (g *Generator) randomAmount() float64 {
	return roundCents(g.rand.Float64() * g.cfg.MaxIncome)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Payload nests the dataset the way GET /referrals serves it for a caller
// whose direct referrals are the accounts referred by rootID ("" selects the
// dataset's roots).
func Payload(ds Dataset, rootID string) []domain.RawNode {
	rows := make([]domain.ReferralRow, 0, len(ds.Accounts))
	for _, a := range ds.Accounts {
		rows = append(rows, domain.ReferralRow{
			ParentID: a.ReferrerID,
			User: domain.ReferralUser{
				ID:          a.ID,
				Name:        a.Name,
				Email:       a.Email,
				ROIIncome:   a.ROIIncome,
				LevelIncome: a.LevelIncome,
				TotalIncome: a.TotalIncome,
			},
		})
	}
	return repository.Nest(rootID, rows)
}

type nameFragments struct {
	first   []string
	last    []string
	domains []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:   []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:    []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		domains: []string{"example.com", "mail.com", "referralnet.io", "invest.net", "yieldplan.org"},
	}
}
