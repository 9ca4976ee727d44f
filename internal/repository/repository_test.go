package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/graph"
)

func TestRepository_UpsertAccount(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	acct := domain.Account{
		ID:           "USR-002",
		Name:         "Bob",
		Email:        " Bob@Example.com ",
		PasswordHash: "hash",
		ReferralCode: "bob123",
		ReferrerID:   "USR-001",
		TotalIncome:  12.5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.UpsertAccount(context.Background(), acct); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}

	call := calls[0]
	if call.Query != upsertAccountCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", upsertAccountCypher, call.Query)
	}
	if call.Params["referrerId"] != "USR-001" {
		t.Errorf("expected referrerId USR-001, got %v", call.Params["referrerId"])
	}
	if call.Params["linkedAt"] != "2024-04-20T12:00:00Z" {
		t.Errorf("unexpected linkedAt %v", call.Params["linkedAt"])
	}

	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["email"] != "bob@example.com" {
		t.Errorf("expected normalized email, got %v", props["email"])
	}
	if props["referralCode"] != "BOB123" {
		t.Errorf("expected upper-cased referral code, got %v", props["referralCode"])
	}
	if props["totalIncome"] != 12.5 {
		t.Errorf("expected totalIncome 12.5, got %v", props["totalIncome"])
	}
}

func TestRepository_UpsertAccountRequiresID(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if err := repo.UpsertAccount(context.Background(), domain.Account{}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestRepository_FindAccountByEmail(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{{
		"id":           "USR-001",
		"name":         "Alice",
		"email":        "alice@example.com",
		"passwordHash": "hash",
		"referralCode": "ALICE1",
		"referrerId":   nil,
		"totalIncome":  int64(100),
		"createdAt":    "2024-04-20T12:00:00Z",
	}}})
	repo := New(mem)

	acct, err := repo.FindAccountByEmail(context.Background(), "  ALICE@example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if acct.ID != "USR-001" || acct.TotalIncome != 100 || acct.ReferrerID != "" {
		t.Fatalf("unexpected account %+v", acct)
	}
	if acct.CreatedAt.IsZero() {
		t.Errorf("expected createdAt to be parsed")
	}

	calls := mem.ReadCalls()
	if calls[0].Params["value"] != "alice@example.com" {
		t.Errorf("expected normalized lookup value, got %v", calls[0].Params["value"])
	}
}

func TestRepository_FindAccountNotFound(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	_, err := repo.FindAccountByReferralCode(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_FetchReferrals(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		row("ROOT", "A", 100),
		row("ROOT", "C", 10),
		row("A", "B", 50),
	}})
	repo := New(mem)

	nodes, err := repo.FetchReferrals(context.Background(), "ROOT", 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 direct referrals, got %d", len(nodes))
	}
	if nodes[0].ID != "A" || nodes[1].ID != "C" {
		t.Fatalf("expected row order A, C; got %s, %s", nodes[0].ID, nodes[1].ID)
	}
	if len(nodes[0].Children) != 1 || nodes[0].Children[0].ID != "B" {
		t.Fatalf("expected B under A, got %+v", nodes[0].Children)
	}
	if nodes[0].Children[0].TotalIncome != 50 {
		t.Errorf("expected B income 50, got %v", nodes[0].Children[0].TotalIncome)
	}

	calls := mem.ReadCalls()
	if !strings.Contains(calls[0].Query, "[:REFERRED*1..5]") {
		t.Errorf("expected depth bound in query, got:\n%s", calls[0].Query)
	}
	if calls[0].Query != fmt.Sprintf(referralRowsCypherTemplate, 5) {
		t.Errorf("unexpected query:\n%s", calls[0].Query)
	}
}

func TestRepository_FetchReferralsValidation(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if _, err := repo.FetchReferrals(context.Background(), "", 5); err == nil {
		t.Errorf("expected error for missing user id")
	}
	if _, err := repo.FetchReferrals(context.Background(), "ROOT", 0); err == nil {
		t.Errorf("expected error for non-positive depth")
	}
}

func TestRepository_FetchReferralsPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := New(graph.NewMemoryClient().WithError(boom))
	if _, err := repo.FetchReferrals(context.Background(), "ROOT", 3); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestNest_SharedAndCyclicEdgesStayBounded(t *testing.T) {
	rows := []domain.ReferralRow{
		{ParentID: "ROOT", User: domain.ReferralUser{ID: "A"}},
		{ParentID: "ROOT", User: domain.ReferralUser{ID: "B"}},
		{ParentID: "A", User: domain.ReferralUser{ID: "C"}},
		{ParentID: "B", User: domain.ReferralUser{ID: "C"}},
		{ParentID: "C", User: domain.ReferralUser{ID: "D"}},
		{ParentID: "D", User: domain.ReferralUser{ID: "A"}},
		{ParentID: "D", User: domain.ReferralUser{ID: "ROOT"}},
		{ParentID: "A", User: domain.ReferralUser{ID: "C"}},
	}

	nodes := Nest("ROOT", rows)

	if len(nodes) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(nodes))
	}
	a := nodes[0]
	if len(a.Children) != 1 || a.Children[0].ID != "C" {
		t.Fatalf("expected A -> C once, got %+v", a.Children)
	}
	d := a.Children[0].Children[0]
	if d.ID != "D" || len(d.Children) != 1 || d.Children[0].ID != "A" {
		t.Fatalf("expected D -> A back-edge as a leaf, got %+v", d)
	}
	if len(d.Children[0].Children) != 0 {
		t.Fatalf("expected back-edge occurrence to be unexpanded")
	}

	b := nodes[1]
	if len(b.Children) != 1 || b.Children[0].ID != "C" || len(b.Children[0].Children) != 0 {
		t.Fatalf("expected second occurrence of C to be a leaf, got %+v", b.Children)
	}
}

func row(parent, id string, income int64) graph.Record {
	return graph.Record{
		"parentId":    parent,
		"id":          id,
		"name":        "user " + id,
		"email":       strings.ToLower(id) + "@example.com",
		"totalIncome": income,
	}
}
