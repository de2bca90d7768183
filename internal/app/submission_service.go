package app

import (
	"context"
	"fmt"
	"log"
	"sort"

	"quiz-platform/internal/domain"
	"quiz-platform/internal/store"
)

// DeletedTestTitle labels results whose test no longer exists.
const DeletedTestTitle = "Удалённый тест"

// SubmissionService grades attempts and keeps at most one result per account and test.
type SubmissionService struct {
	base
	locks Locker
	feed  *ResultFeed
}

// NewSubmissionService wires the service. feed may be nil.
func NewSubmissionService(b store.Backend, locks Locker, feed *ResultFeed, opts ...Option) *SubmissionService {
	return &SubmissionService{base: newBase(b, opts), locks: locks, feed: feed}
}

// Submit grades answers for testID and records the single allowed result for accountID.
func (s *SubmissionService) Submit(ctx context.Context, accountID, testID string, answers []*int, elapsed int) (domain.ScoreSummary, error) {
	if accountID == "" || testID == "" {
		return domain.ScoreSummary{}, fmt.Errorf("%w: test id is required", domain.ErrValidation)
	}
	if elapsed < 0 {
		return domain.ScoreSummary{}, fmt.Errorf("%w: time spent must not be negative", domain.ErrValidation)
	}

	test, err := s.test(ctx, testID)
	if err != nil {
		return domain.ScoreSummary{}, err
	}

	unlock, err := s.locks.Lock(ctx, submissionKey(accountID, testID))
	if err != nil {
		return domain.ScoreSummary{}, fmt.Errorf("lock submission: %w", err)
	}
	defer unlock()

	score, outcomes := Grade(test.Questions, answers)
	total := len(test.Questions)
	result := domain.SubmissionResult{
		ID:             s.newID(),
		AccountID:      accountID,
		TestID:         testID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     Percentage(score, total),
		TimeSpent:      elapsed,
		Answers:        outcomes,
		CreatedAt:      s.now(),
	}
	err = store.Update(ctx, s.store, store.Results, func(results []domain.SubmissionResult) ([]domain.SubmissionResult, error) {
		for _, r := range results {
			if r.AccountID == accountID && r.TestID == testID {
				return nil, domain.ErrAlreadySubmitted
			}
		}
		return append(results, result), nil
	})
	if err != nil {
		return domain.ScoreSummary{}, err
	}

	log.Printf("submission: account %s scored %d/%d on test %s", accountID, score, total, testID)
	if s.feed != nil {
		s.feed.Publish(result)
	}
	return domain.ScoreSummary{
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
	}, nil
}

// ResultsForAccount returns the account's results, newest first, with test titles.
func (s *SubmissionService) ResultsForAccount(ctx context.Context, accountID string) ([]domain.ResultView, error) {
	results, err := store.Load[domain.SubmissionResult](ctx, s.store, store.Results)
	if err != nil {
		return nil, err
	}
	titles, err := s.testTitles(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.ResultView, 0)
	for _, r := range results {
		if r.AccountID == accountID {
			views = append(views, domain.ResultView{SubmissionResult: r, TestTitle: titleOf(titles, r.TestID)})
		}
	}
	sortNewestFirst(views)
	return views, nil
}

// ListResults returns every result with test titles and account names.
func (s *SubmissionService) ListResults(ctx context.Context) ([]domain.ResultView, error) {
	results, err := store.Load[domain.SubmissionResult](ctx, s.store, store.Results)
	if err != nil {
		return nil, err
	}
	titles, err := s.testTitles(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.FullName()
	}

	views := make([]domain.ResultView, 0, len(results))
	for _, r := range results {
		views = append(views, domain.ResultView{
			SubmissionResult: r,
			TestTitle:        titleOf(titles, r.TestID),
			UserName:         names[r.AccountID],
		})
	}
	sortNewestFirst(views)
	return views, nil
}

// DeleteResult removes a result, which lets the account take the test again.
func (s *SubmissionService) DeleteResult(ctx context.Context, id string) error {
	return store.Update(ctx, s.store, store.Results, func(results []domain.SubmissionResult) ([]domain.SubmissionResult, error) {
		for i := range results {
			if results[i].ID == id {
				return append(results[:i], results[i+1:]...), nil
			}
		}
		return nil, domain.ErrResultNotFound
	})
}

// Statistics summarizes the platform for the admin dashboard.
func (s *SubmissionService) Statistics(ctx context.Context) (domain.Statistics, error) {
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return domain.Statistics{}, err
	}
	directions, err := store.Load[domain.Direction](ctx, s.store, store.Directions)
	if err != nil {
		return domain.Statistics{}, err
	}
	tests, err := store.Load[domain.TestDefinition](ctx, s.store, store.Tests)
	if err != nil {
		return domain.Statistics{}, err
	}
	results, err := store.Load[domain.SubmissionResult](ctx, s.store, store.Results)
	if err != nil {
		return domain.Statistics{}, err
	}

	type agg struct{ count, sum int }
	perTest := make(map[string]*agg, len(tests))
	overall := 0
	for _, r := range results {
		overall += r.Percentage
		a, ok := perTest[r.TestID]
		if !ok {
			a = &agg{}
			perTest[r.TestID] = a
		}
		a.count++
		a.sum += r.Percentage
	}

	stats := domain.Statistics{
		TotalUsers:      len(accounts),
		TotalDirections: len(directions),
		TotalTests:      len(tests),
		TotalResults:    len(results),
		Tests:           make([]domain.TestStatistics, 0, len(tests)),
	}
	if len(results) > 0 {
		stats.AveragePercentage = average(overall, len(results))
	}
	for _, t := range tests {
		ts := domain.TestStatistics{TestID: t.ID, Title: t.Title}
		if a, ok := perTest[t.ID]; ok {
			ts.Submissions = a.count
			ts.AveragePercentage = average(a.sum, a.count)
		}
		stats.Tests = append(stats.Tests, ts)
	}
	return stats, nil
}

func (s *SubmissionService) test(ctx context.Context, id string) (domain.TestDefinition, error) {
	tests, err := store.Load[domain.TestDefinition](ctx, s.store, store.Tests)
	if err != nil {
		return domain.TestDefinition{}, err
	}
	for _, t := range tests {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.TestDefinition{}, domain.ErrTestNotFound
}

func (s *SubmissionService) testTitles(ctx context.Context) (map[string]string, error) {
	tests, err := store.Load[domain.TestDefinition](ctx, s.store, store.Tests)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(tests))
	for _, t := range tests {
		titles[t.ID] = t.Title
	}
	return titles, nil
}

func titleOf(titles map[string]string, testID string) string {
	if title, ok := titles[testID]; ok {
		return title
	}
	return DeletedTestTitle
}

func sortNewestFirst(views []domain.ResultView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}

func average(sum, count int) int {
	return Percentage(sum, 100*count)
}

func submissionKey(accountID, testID string) string {
	return "submission:" + accountID + ":" + testID
}
