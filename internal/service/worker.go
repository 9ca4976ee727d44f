package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor loads referral datasets using a worker pool.
type BulkIngestor struct {
	service *AccountService
	workers int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(service *AccountService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// IngestAccounts upserts the accounts one referral generation at a time so
// that every referrer exists before the accounts linking to it are written.
// Accounts within a generation are processed concurrently.
func (bi *BulkIngestor) IngestAccounts(ctx context.Context, accounts []AccountInput) error {
	var taskErr TaskError
	for _, wave := range generations(accounts) {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := bi.run(ctx, len(wave), func(idx int) error {
			if err := bi.service.UpsertAccount(ctx, wave[idx]); err != nil {
				return fmt.Errorf("account %s: %w", wave[idx].ID, err)
			}
			return nil
		})
		var te *TaskError
		switch {
		case err == nil:
		case errors.As(err, &te):
			taskErr.Errors = append(taskErr.Errors, te.Errors...)
		default:
			return err
		}
	}
	return taskErr.asError()
}

// generations groups accounts by distance from a referrer outside the
// dataset. Input order is kept within a group. Accounts caught in a referral
// cycle are placed after the longest acyclic chain.
func generations(accounts []AccountInput) [][]AccountInput {
	referrer := make(map[string]string, len(accounts))
	for _, a := range accounts {
		referrer[a.ID] = a.ReferrerID
	}

	level := make(map[string]int, len(accounts))
	var depthOf func(id string, guard int) int
	depthOf = func(id string, guard int) int {
		if l, ok := level[id]; ok {
			return l
		}
		parent, known := referrer[id]
		if !known || parent == "" || parent == id || guard > len(accounts) {
			return 0
		}
		l := depthOf(parent, guard+1) + 1
		level[id] = l
		return l
	}

	var waves [][]AccountInput
	for _, a := range accounts {
		l := depthOf(a.ID, 0)
		for len(waves) <= l {
			waves = append(waves, nil)
		}
		waves[l] = append(waves[l], a)
	}

	out := waves[:0]
	for _, w := range waves {
		if len(w) > 0 {
			out = append(out, w)
		}
	}
	return out
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
