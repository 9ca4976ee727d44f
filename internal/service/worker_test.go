package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(wave []AccountInput) []string {
	out := make([]string, 0, len(wave))
	for _, a := range wave {
		out = append(out, a.ID)
	}
	return out
}

func TestGenerations_ReferrersFirst(t *testing.T) {
	accounts := []AccountInput{
		{ID: "C", ReferrerID: "B"},
		{ID: "B", ReferrerID: "A"},
		{ID: "A"},
		{ID: "X", ReferrerID: "OUTSIDE"},
		{ID: "D", ReferrerID: "A"},
	}

	waves := generations(accounts)
	require.Len(t, waves, 3)
	assert.Equal(t, []string{"A", "X"}, ids(waves[0]))
	assert.Equal(t, []string{"B", "D"}, ids(waves[1]))
	assert.Equal(t, []string{"C"}, ids(waves[2]))
}

func TestGenerations_CycleTerminates(t *testing.T) {
	accounts := []AccountInput{
		{ID: "A", ReferrerID: "B"},
		{ID: "B", ReferrerID: "A"},
		{ID: "S", ReferrerID: "S"},
	}

	waves := generations(accounts)
	total := 0
	for _, w := range waves {
		total += len(w)
	}
	assert.Equal(t, 3, total)
}

func TestBulkIngestor_IngestAccounts(t *testing.T) {
	repo := newStubRepository()
	ingestor := NewBulkIngestor(newAccountService(repo), 3)

	accounts := []AccountInput{
		{ID: "C", ReferrerID: "B"},
		{ID: "B", ReferrerID: "A"},
		{ID: "A"},
	}
	require.NoError(t, ingestor.IngestAccounts(context.Background(), accounts))

	require.Len(t, repo.upserted, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{repo.upserted[0].ID, repo.upserted[1].ID, repo.upserted[2].ID})
}

func TestBulkIngestor_CollectsErrors(t *testing.T) {
	repo := newStubRepository()
	ingestor := NewBulkIngestor(newAccountService(repo), 2)

	err := ingestor.IngestAccounts(context.Background(), []AccountInput{{ID: "A"}, {ID: ""}, {ID: "B", ReferrerID: "A"}, {ID: ""}})
	require.Error(t, err)

	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.Len(t, taskErr.Errors, 2)
	assert.Len(t, repo.upserted, 2)
}

func TestBulkIngestor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := newStubRepository()
	err := NewBulkIngestor(newAccountService(repo), 1).IngestAccounts(ctx, []AccountInput{{ID: "A"}, {ID: "B"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.upserted)
}

func TestTaskError_Message(t *testing.T) {
	assert.Equal(t, "no errors", (&TaskError{}).Error())
	assert.Equal(t, "one", (&TaskError{Errors: []error{errors.New("one")}}).Error())
	assert.Equal(t, "multiple errors: one; two;", (&TaskError{Errors: []error{errors.New("one"), errors.New("two")}}).Error())
}
