package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/graph"
)

// Repository encapsulates graph persistence operations for accounts and the
// referral edges between them.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// UpsertAccount ensures a user node exists with the latest profile and income
// figures, and links it under its referrer when one is set.
func (r *Repository) UpsertAccount(ctx context.Context, acct domain.Account) error {
	if acct.ID == "" {
		return errors.New("account id is required")
	}

	params := map[string]any{
		"userId":     acct.ID,
		"props":      accountProperties(acct),
		"referrerId": acct.ReferrerID,
		"linkedAt":   formatTime(acct.CreatedAt),
	}

	if _, err := r.client.ExecuteWrite(ctx, upsertAccountCypher, params); err != nil {
		return fmt.Errorf("upsert account %s: %w", acct.ID, err)
	}
	return nil
}

// FindAccountByID loads one account.
func (r *Repository) FindAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.findAccount(ctx, findAccountByIDCypher, map[string]any{"value": id})
}

// FindAccountByEmail loads the account registered under email (case-insensitive).
func (r *Repository) FindAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.findAccount(ctx, findAccountByEmailCypher, map[string]any{"value": strings.ToLower(strings.TrimSpace(email))})
}

// FindAccountByReferralCode loads the account owning a referral code.
func (r *Repository) FindAccountByReferralCode(ctx context.Context, code string) (domain.Account, error) {
	return r.findAccount(ctx, findAccountByCodeCypher, map[string]any{"value": strings.ToUpper(strings.TrimSpace(code))})
}

func (r *Repository) findAccount(ctx context.Context, cypher string, params map[string]any) (domain.Account, error) {
	res, err := r.client.ExecuteRead(ctx, cypher, params)
	if err != nil {
		return domain.Account{}, fmt.Errorf("find account: %w", err)
	}
	rec, err := res.First()
	if err != nil {
		return domain.Account{}, domain.ErrNotFound
	}
	return accountFromRecord(rec), nil
}

// FetchReferralRows returns every referral edge below userID up to maxDepth
// levels, ordered by level, then referral time, then identifier.
func (r *Repository) FetchReferralRows(ctx context.Context, userID string, maxDepth int) ([]domain.ReferralRow, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if maxDepth <= 0 {
		return nil, fmt.Errorf("max depth must be positive, got %d", maxDepth)
	}

	res, err := r.client.ExecuteRead(ctx, fmt.Sprintf(referralRowsCypherTemplate, maxDepth), map[string]any{
		"userId": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch referral rows for %s: %w", userID, err)
	}

	rows := make([]domain.ReferralRow, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, domain.ReferralRow{
			ParentID: rec.String("parentId"),
			User: domain.ReferralUser{
				ID:          rec.String("id"),
				Name:        rec.String("name"),
				Email:       rec.String("email"),
				ROIIncome:   rec.Float("roiIncome"),
				LevelIncome: rec.Float("levelIncome"),
				TotalIncome: rec.Float("totalIncome"),
			},
		})
	}
	return rows, nil
}

// FetchReferrals returns the caller's downline as the nested payload served on
// GET /referrals.
func (r *Repository) FetchReferrals(ctx context.Context, userID string, maxDepth int) ([]domain.RawNode, error) {
	rows, err := r.FetchReferralRows(ctx, userID, maxDepth)
	if err != nil {
		return nil, err
	}
	return Nest(userID, rows), nil
}

// Nest arranges flat parent/child rows into the nested payload rooted at the
// (implicit) rootID. Child order follows row order and repeated edges are
// collapsed. A user reachable through more than one path is emitted at every
// occurrence but its own recruits are expanded only once, so a graph with
// shared or cyclic edges yields a bounded payload whose repeats the tree
// builder reports as duplicates. Edges pointing back at rootID are ignored.
func Nest(rootID string, rows []domain.ReferralRow) []domain.RawNode {
	type edge struct{ parent, child string }
	seen := make(map[edge]bool, len(rows))
	children := make(map[string][]domain.ReferralUser)
	for _, row := range rows {
		e := edge{row.ParentID, row.User.ID}
		if seen[e] || row.User.ID == rootID {
			continue
		}
		seen[e] = true
		children[row.ParentID] = append(children[row.ParentID], row.User)
	}

	expanded := map[string]bool{rootID: true}
	var build func(user domain.ReferralUser) domain.RawNode
	build = func(user domain.ReferralUser) domain.RawNode {
		node := domain.RawNode{
			ID:          user.ID,
			Name:        user.Name,
			Email:       user.Email,
			TotalIncome: user.TotalIncome,
			ROIIncome:   user.ROIIncome,
			LevelIncome: user.LevelIncome,
			Children:    []domain.RawNode{},
		}
		if expanded[user.ID] {
			return node
		}
		expanded[user.ID] = true
		for _, child := range children[user.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	out := make([]domain.RawNode, 0, len(children[rootID]))
	for _, direct := range children[rootID] {
		out = append(out, build(direct))
	}
	return out
}

func accountProperties(a domain.Account) map[string]any {
	return map[string]any{
		"name":         a.Name,
		"email":        strings.ToLower(strings.TrimSpace(a.Email)),
		"passwordHash": a.PasswordHash,
		"referralCode": strings.ToUpper(a.ReferralCode),
		"roiIncome":    a.ROIIncome,
		"levelIncome":  a.LevelIncome,
		"totalIncome":  a.TotalIncome,
		"createdAt":    formatTime(a.CreatedAt),
		"updatedAt":    formatTime(a.UpdatedAt),
	}
}

func accountFromRecord(rec graph.Record) domain.Account {
	return domain.Account{
		ID:           rec.String("id"),
		Name:         rec.String("name"),
		Email:        rec.String("email"),
		PasswordHash: rec.String("passwordHash"),
		ReferralCode: rec.String("referralCode"),
		ReferrerID:   rec.String("referrerId"),
		ROIIncome:    rec.Float("roiIncome"),
		LevelIncome:  rec.Float("levelIncome"),
		TotalIncome:  rec.Float("totalIncome"),
		CreatedAt:    parseTime(rec.String("createdAt")),
		UpdatedAt:    parseTime(rec.String("updatedAt")),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

const upsertAccountCypher = `
MERGE (u:User {id: $userId})
SET u += $props
WITH u
CALL {
  WITH u
  MATCH (ref:User {id: $referrerId})
  WHERE $referrerId <> '' AND ref.id <> u.id
  MERGE (ref)-[rel:REFERRED]->(u)
  ON CREATE SET rel.createdAt = $linkedAt
  RETURN count(rel) AS linked
}
RETURN u.id AS id, linked
`

const accountReturnClause = `
OPTIONAL MATCH (ref:User)-[:REFERRED]->(u)
RETURN u.id AS id, u.name AS name, u.email AS email, u.passwordHash AS passwordHash,
       u.referralCode AS referralCode, ref.id AS referrerId,
       coalesce(u.roiIncome, 0.0) AS roiIncome, coalesce(u.levelIncome, 0.0) AS levelIncome,
       coalesce(u.totalIncome, 0.0) AS totalIncome, u.createdAt AS createdAt, u.updatedAt AS updatedAt
LIMIT 1
`

const findAccountByIDCypher = `
MATCH (u:User {id: $value})` + accountReturnClause

const findAccountByEmailCypher = `
MATCH (u:User {email: $value})` + accountReturnClause

const findAccountByCodeCypher = `
MATCH (u:User {referralCode: $value})` + accountReturnClause

// Variable-length bounds cannot be parameterised; the depth is formatted in
// from a validated positive int.
const referralRowsCypherTemplate = `
MATCH path = (root:User {id: $userId})-[:REFERRED*1..%d]->(u:User)
WITH nodes(path)[-2] AS parent, u, relationships(path)[-1] AS rel, length(path) AS depth
RETURN DISTINCT parent.id AS parentId, u.id AS id, u.name AS name, u.email AS email,
       coalesce(u.roiIncome, 0.0) AS roiIncome, coalesce(u.levelIncome, 0.0) AS levelIncome,
       coalesce(u.totalIncome, 0.0) AS totalIncome, rel.createdAt AS referredAt, depth
ORDER BY depth, referredAt, id
`
