package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"quiz-platform/internal/domain"
	"quiz-platform/internal/store"
)

// TestInput is an admin create/update payload. Question ids are ignored and reassigned.
type TestInput struct {
	Title       string
	DirectionID string
	TimeLimit   int
	Attempts    int
	Questions   []domain.Question
}

// CatalogService manages directions and test definitions.
type CatalogService struct {
	base
}

func NewCatalogService(b store.Backend, opts ...Option) *CatalogService {
	return &CatalogService{base: newBase(b, opts)}
}

func (s *CatalogService) ListDirections(ctx context.Context) ([]domain.Direction, error) {
	return store.Load[domain.Direction](ctx, s.store, store.Directions)
}

func (s *CatalogService) CreateDirection(ctx context.Context, name string) (domain.Direction, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Direction{}, fmt.Errorf("%w: direction name is required", domain.ErrValidation)
	}
	direction := domain.Direction{ID: s.newID(), Name: name}
	err := store.Update(ctx, s.store, store.Directions, func(directions []domain.Direction) ([]domain.Direction, error) {
		for _, d := range directions {
			if strings.EqualFold(d.Name, name) {
				return nil, domain.ErrDirectionExists
			}
		}
		return append(directions, direction), nil
	})
	if err != nil {
		return domain.Direction{}, err
	}
	return direction, nil
}

// RenameDirection changes the display name and refreshes it on every test of the direction.
func (s *CatalogService) RenameDirection(ctx context.Context, id, name string) (domain.Direction, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Direction{}, fmt.Errorf("%w: direction name is required", domain.ErrValidation)
	}
	var renamed domain.Direction
	err := store.Update(ctx, s.store, store.Directions, func(directions []domain.Direction) ([]domain.Direction, error) {
		idx := -1
		for i, d := range directions {
			if d.ID == id {
				idx = i
				continue
			}
			if strings.EqualFold(d.Name, name) {
				return nil, domain.ErrDirectionExists
			}
		}
		if idx < 0 {
			return nil, domain.ErrDirectionNotFound
		}
		directions[idx].Name = name
		renamed = directions[idx]
		return directions, nil
	})
	if err != nil {
		return domain.Direction{}, err
	}

	err = store.Update(ctx, s.store, store.Tests, func(tests []domain.TestDefinition) ([]domain.TestDefinition, error) {
		for i := range tests {
			if tests[i].DirectionID == id {
				tests[i].DirectionName = name
			}
		}
		return tests, nil
	})
	if err != nil {
		return domain.Direction{}, err
	}
	return renamed, nil
}

// DeleteDirection removes a direction no account or test references.
func (s *CatalogService) DeleteDirection(ctx context.Context, id string) error {
	accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.DirectionID == id {
			return domain.ErrDirectionInUse
		}
	}
	tests, err := store.Load[domain.TestDefinition](ctx, s.store, store.Tests)
	if err != nil {
		return err
	}
	for _, t := range tests {
		if t.DirectionID == id {
			return domain.ErrDirectionInUse
		}
	}

	return store.Update(ctx, s.store, store.Directions, func(directions []domain.Direction) ([]domain.Direction, error) {
		for i := range directions {
			if directions[i].ID == id {
				return append(directions[:i], directions[i+1:]...), nil
			}
		}
		return nil, domain.ErrDirectionNotFound
	})
}

func (s *CatalogService) ListTests(ctx context.Context) ([]domain.TestDefinition, error) {
	return store.Load[domain.TestDefinition](ctx, s.store, store.Tests)
}

// GetTest returns the full definition, correct answers included. Admin only.
func (s *CatalogService) GetTest(ctx context.Context, id string) (domain.TestDefinition, error) {
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

// GetLearnerTest returns the test as shown for answering.
func (s *CatalogService) GetLearnerTest(ctx context.Context, id string) (domain.LearnerTest, error) {
	t, err := s.GetTest(ctx, id)
	if err != nil {
		return domain.LearnerTest{}, err
	}
	return t.ForLearner(), nil
}

// ListTestsForAccount lists tests of the learner's direction (all tests for admins),
// flagging the ones the account already completed.
func (s *CatalogService) ListTestsForAccount(ctx context.Context, accountID string, isAdmin bool) ([]domain.TestSummary, error) {
	direction := ""
	if !isAdmin {
		accounts, err := store.Load[domain.Account](ctx, s.store, store.Accounts)
		if err != nil {
			return nil, err
		}
		found := false
		for _, a := range accounts {
			if a.ID == accountID {
				direction, found = a.DirectionID, true
				break
			}
		}
		if !found {
			return nil, domain.ErrAccountNotFound
		}
	}

	tests, err := store.Load[domain.TestDefinition](ctx, s.store, store.Tests)
	if err != nil {
		return nil, err
	}
	results, err := store.Load[domain.SubmissionResult](ctx, s.store, store.Results)
	if err != nil {
		return nil, err
	}
	completed := make(map[string]bool)
	for _, r := range results {
		if r.AccountID == accountID {
			completed[r.TestID] = true
		}
	}

	summaries := make([]domain.TestSummary, 0, len(tests))
	for _, t := range tests {
		if !isAdmin && t.DirectionID != direction {
			continue
		}
		summaries = append(summaries, domain.TestSummary{
			ID:            t.ID,
			Title:         t.Title,
			DirectionID:   t.DirectionID,
			DirectionName: t.DirectionName,
			TimeLimit:     t.TimeLimit,
			Attempts:      t.Attempts,
			QuestionCount: len(t.Questions),
			Completed:     completed[t.ID],
			CreatedAt:     t.CreatedAt,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (s *CatalogService) CreateTest(ctx context.Context, in TestInput) (domain.TestDefinition, error) {
	in, err := prepareTest(in)
	if err != nil {
		return domain.TestDefinition{}, err
	}
	directionName, err := s.directionName(ctx, in.DirectionID)
	if err != nil {
		return domain.TestDefinition{}, err
	}
	now := s.now()
	test := domain.TestDefinition{
		ID:            s.newID(),
		Title:         in.Title,
		DirectionID:   in.DirectionID,
		DirectionName: directionName,
		TimeLimit:     in.TimeLimit,
		Attempts:      in.Attempts,
		Questions:     in.Questions,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = store.Update(ctx, s.store, store.Tests, func(tests []domain.TestDefinition) ([]domain.TestDefinition, error) {
		return append(tests, test), nil
	})
	if err != nil {
		return domain.TestDefinition{}, err
	}
	return test, nil
}

func (s *CatalogService) UpdateTest(ctx context.Context, id string, in TestInput) (domain.TestDefinition, error) {
	in, err := prepareTest(in)
	if err != nil {
		return domain.TestDefinition{}, err
	}
	directionName, err := s.directionName(ctx, in.DirectionID)
	if err != nil {
		return domain.TestDefinition{}, err
	}
	var updated domain.TestDefinition
	err = store.Update(ctx, s.store, store.Tests, func(tests []domain.TestDefinition) ([]domain.TestDefinition, error) {
		for i := range tests {
			if tests[i].ID != id {
				continue
			}
			tests[i].Title = in.Title
			tests[i].DirectionID = in.DirectionID
			tests[i].DirectionName = directionName
			tests[i].TimeLimit = in.TimeLimit
			tests[i].Attempts = in.Attempts
			tests[i].Questions = in.Questions
			tests[i].UpdatedAt = s.now()
			updated = tests[i]
			return tests, nil
		}
		return nil, domain.ErrTestNotFound
	})
	if err != nil {
		return domain.TestDefinition{}, err
	}
	return updated, nil
}

// DeleteTest removes a test. Results that reference it are kept.
func (s *CatalogService) DeleteTest(ctx context.Context, id string) error {
	return store.Update(ctx, s.store, store.Tests, func(tests []domain.TestDefinition) ([]domain.TestDefinition, error) {
		for i := range tests {
			if tests[i].ID == id {
				return append(tests[:i], tests[i+1:]...), nil
			}
		}
		return nil, domain.ErrTestNotFound
	})
}

func (s *CatalogService) directionName(ctx context.Context, id string) (string, error) {
	names, err := directionNames(ctx, s.store)
	if err != nil {
		return "", err
	}
	name, ok := names[id]
	if !ok {
		return "", domain.ErrUnknownDirection
	}
	return name, nil
}

// prepareTest validates the input and renumbers questions 1..N.
func prepareTest(in TestInput) (TestInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.DirectionID = strings.TrimSpace(in.DirectionID)
	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.DirectionID == "" {
		return in, fmt.Errorf("%w: direction is required", domain.ErrValidation)
	}
	if in.TimeLimit < 0 || in.Attempts < 0 {
		return in, fmt.Errorf("%w: time limit and attempts must not be negative", domain.ErrValidation)
	}

	questions := make([]domain.Question, 0, len(in.Questions))
	for i, q := range in.Questions {
		prompt := strings.TrimSpace(q.Prompt)
		if prompt == "" {
			return in, fmt.Errorf("%w: question %d has no text", domain.ErrValidation, i+1)
		}
		if len(q.Options) < 2 {
			return in, fmt.Errorf("%w: question %d needs at least two options", domain.ErrValidation, i+1)
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return in, fmt.Errorf("%w: question %d has no valid correct option", domain.ErrValidation, i+1)
		}
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		questions = append(questions, domain.Question{
			ID:      i + 1,
			Prompt:  prompt,
			Options: options,
			Correct: q.Correct,
		})
	}
	in.Questions = questions
	return in, nil
}
