package app_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"quiz-platform/internal/app"
	"quiz-platform/internal/auth"
	"quiz-platform/internal/domain"
	"quiz-platform/internal/infra/memory"
	"quiz-platform/internal/store"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func sequentialIDs(prefix string) func() string {
	var n int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, atomic.AddInt64(&n, 1))
	}
}

func intp(v int) *int { return &v }

func seedDirection(t *testing.T, b store.Backend, id, name string) {
	t.Helper()
	err := store.Update(context.Background(), b, store.Directions, func(ds []domain.Direction) ([]domain.Direction, error) {
		return append(ds, domain.Direction{ID: id, Name: name}), nil
	})
	if err != nil {
		t.Fatalf("seed direction: %v", err)
	}
}

func seedTest(t *testing.T, b store.Backend, test domain.TestDefinition) {
	t.Helper()
	err := store.Update(context.Background(), b, store.Tests, func(ts []domain.TestDefinition) ([]domain.TestDefinition, error) {
		return append(ts, test), nil
	})
	if err != nil {
		t.Fatalf("seed test: %v", err)
	}
}

func seedAccount(t *testing.T, b store.Backend, account domain.Account) {
	t.Helper()
	err := store.Update(context.Background(), b, store.Accounts, func(as []domain.Account) ([]domain.Account, error) {
		return append(as, account), nil
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func loadResults(t *testing.T, b store.Backend) []domain.SubmissionResult {
	t.Helper()
	results, err := store.Load[domain.SubmissionResult](context.Background(), b, store.Results)
	if err != nil {
		t.Fatalf("load results: %v", err)
	}
	return results
}

// fourQuestionTest has correct answers [0,1,2,3].
func fourQuestionTest(id, direction string) domain.TestDefinition {
	questions := make([]domain.Question, 0, 4)
	for i := 0; i < 4; i++ {
		questions = append(questions, domain.Question{
			ID:      i + 1,
			Prompt:  fmt.Sprintf("Question %d", i+1),
			Options: []string{"a", "b", "c", "d"},
			Correct: i,
		})
	}
	return domain.TestDefinition{
		ID:            id,
		Title:         "Go basics",
		DirectionID:   direction,
		DirectionName: "Backend",
		TimeLimit:     30,
		Attempts:      1,
		Questions:     questions,
	}
}

func newAccountService(b store.Backend, clock *fixedClock) *app.AccountService {
	return app.NewAccountService(b,
		auth.NewHasher(bcrypt.MinCost),
		auth.NewTokens("test-secret", time.Hour),
		app.WithClock(clock.Now),
		app.WithIDs(sequentialIDs("acc")),
	)
}

func newSubmissionService(b store.Backend, feed *app.ResultFeed, clock *fixedClock) *app.SubmissionService {
	return app.NewSubmissionService(b, memory.NewKeyedLocker(), feed,
		app.WithClock(clock.Now),
		app.WithIDs(sequentialIDs("res")),
	)
}
