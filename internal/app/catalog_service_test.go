package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"quiz-platform/internal/app"
	"quiz-platform/internal/domain"
	"quiz-platform/internal/infra/memory"
)

func newCatalog(backend *memory.DocumentStore, clock *fixedClock) *app.CatalogService {
	return app.NewCatalogService(backend, app.WithClock(clock.Now), app.WithIDs(sequentialIDs("id")))
}

func sampleInput(direction string) app.TestInput {
	return app.TestInput{
		Title:       "  Networking  ",
		DirectionID: direction,
		TimeLimit:   15,
		Attempts:    1,
		Questions: []domain.Question{
			{ID: 42, Prompt: "TCP port of HTTPS?", Options: []string{"80", "443"}, Correct: 1},
			{ID: 7, Prompt: "UDP is connectionless?", Options: []string{"yes", "no"}, Correct: 0},
		},
	}
}

func TestCreateTestRenumbersAndDerivesDirection(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	clock := newClock()
	seedDirection(t, backend, "d1", "Backend")
	catalog := newCatalog(backend, clock)

	test, err := catalog.CreateTest(ctx, sampleInput("d1"))
	if err != nil {
		t.Fatalf("create test: %v", err)
	}
	if test.Title != "Networking" || test.DirectionName != "Backend" {
		t.Fatalf("unexpected test %+v", test)
	}
	for i, q := range test.Questions {
		if q.ID != i+1 {
			t.Fatalf("expected question %d to be renumbered, got id %d", i, q.ID)
		}
	}
	if !test.CreatedAt.Equal(clock.now) || !test.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected timestamps from clock, got %v/%v", test.CreatedAt, test.UpdatedAt)
	}

	clock.Advance(time.Hour)
	in := sampleInput("d1")
	in.Questions = in.Questions[:1]
	in.Questions[0].ID = 99
	updated, err := catalog.UpdateTest(ctx, test.ID, in)
	if err != nil {
		t.Fatalf("update test: %v", err)
	}
	if len(updated.Questions) != 1 || updated.Questions[0].ID != 1 {
		t.Fatalf("expected renumbered single question, got %+v", updated.Questions)
	}
	if !updated.CreatedAt.Equal(test.CreatedAt) || !updated.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected created kept and updated bumped, got %v/%v", updated.CreatedAt, updated.UpdatedAt)
	}

	if _, err := catalog.UpdateTest(ctx, "missing", in); !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}

func TestCreateTestValidation(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	seedDirection(t, backend, "d1", "Backend")
	catalog := newCatalog(backend, newClock())

	if _, err := catalog.CreateTest(ctx, sampleInput("nope")); !errors.Is(err, domain.ErrUnknownDirection) {
		t.Fatalf("expected ErrUnknownDirection, got %v", err)
	}

	bad := []func(*app.TestInput){
		func(in *app.TestInput) { in.Title = " " },
		func(in *app.TestInput) { in.TimeLimit = -1 },
		func(in *app.TestInput) { in.Questions[0].Prompt = "" },
		func(in *app.TestInput) { in.Questions[0].Options = []string{"only"} },
		func(in *app.TestInput) { in.Questions[1].Correct = 2 },
	}
	for i, mutate := range bad {
		in := sampleInput("d1")
		mutate(&in)
		if _, err := catalog.CreateTest(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestLearnerTestOmitsCorrectAnswers(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	seedDirection(t, backend, "d1", "Backend")
	catalog := newCatalog(backend, newClock())

	test, err := catalog.CreateTest(ctx, sampleInput("d1"))
	if err != nil {
		t.Fatalf("create test: %v", err)
	}
	learner, err := catalog.GetLearnerTest(ctx, test.ID)
	if err != nil {
		t.Fatalf("get learner test: %v", err)
	}
	payload, err := json.Marshal(learner)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(payload), `"correct"`) {
		t.Fatalf("learner payload leaks correct answers: %s", payload)
	}
	if len(learner.Questions) != 2 || learner.Questions[0].Prompt != "TCP port of HTTPS?" {
		t.Fatalf("unexpected learner questions %+v", learner.Questions)
	}
	if _, err := catalog.GetLearnerTest(ctx, "missing"); !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}

func TestListTestsForAccountScopesByDirection(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	clock := newClock()
	seedDirection(t, backend, "d1", "Backend")
	seedDirection(t, backend, "d2", "Frontend")
	seedAccount(t, backend, domain.Account{ID: "u1", DirectionID: "d1"})
	catalog := newCatalog(backend, clock)

	backendTest, err := catalog.CreateTest(ctx, sampleInput("d1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := catalog.CreateTest(ctx, sampleInput("d2")); err != nil {
		t.Fatalf("create: %v", err)
	}

	submissions := newSubmissionService(backend, nil, clock)
	if _, err := submissions.Submit(ctx, "u1", backendTest.ID, nil, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	mine, err := catalog.ListTestsForAccount(ctx, "u1", false)
	if err != nil {
		t.Fatalf("list for learner: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != backendTest.ID || !mine[0].Completed || mine[0].QuestionCount != 2 {
		t.Fatalf("unexpected learner listing %+v", mine)
	}

	all, err := catalog.ListTestsForAccount(ctx, "admin", true)
	if err != nil {
		t.Fatalf("list for admin: %v", err)
	}
	if len(all) != 2 || all[0].DirectionID != "d2" {
		t.Fatalf("expected all tests newest first, got %+v", all)
	}

	if _, err := catalog.ListTestsForAccount(ctx, "ghost", false); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDirectionLifecycle(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	catalog := newCatalog(backend, newClock())

	backendDir, err := catalog.CreateDirection(ctx, "Backend")
	if err != nil {
		t.Fatalf("create direction: %v", err)
	}
	if _, err := catalog.CreateDirection(ctx, "backend"); !errors.Is(err, domain.ErrDirectionExists) {
		t.Fatalf("expected ErrDirectionExists, got %v", err)
	}
	if _, err := catalog.CreateDirection(ctx, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	spare, err := catalog.CreateDirection(ctx, "Design")
	if err != nil {
		t.Fatalf("create direction: %v", err)
	}

	test, err := catalog.CreateTest(ctx, sampleInput(backendDir.ID))
	if err != nil {
		t.Fatalf("create test: %v", err)
	}

	if _, err := catalog.RenameDirection(ctx, backendDir.ID, "Design"); !errors.Is(err, domain.ErrDirectionExists) {
		t.Fatalf("expected rename clash, got %v", err)
	}
	if _, err := catalog.RenameDirection(ctx, backendDir.ID, "Server side"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	renamed, err := catalog.GetTest(ctx, test.ID)
	if err != nil {
		t.Fatalf("get test: %v", err)
	}
	if renamed.DirectionName != "Server side" {
		t.Fatalf("expected direction name propagated, got %q", renamed.DirectionName)
	}

	if err := catalog.DeleteDirection(ctx, backendDir.ID); !errors.Is(err, domain.ErrDirectionInUse) {
		t.Fatalf("expected ErrDirectionInUse for test reference, got %v", err)
	}
	seedAccount(t, backend, domain.Account{ID: "u1", DirectionID: spare.ID})
	if err := catalog.DeleteDirection(ctx, spare.ID); !errors.Is(err, domain.ErrDirectionInUse) {
		t.Fatalf("expected ErrDirectionInUse for account reference, got %v", err)
	}

	if err := catalog.DeleteTest(ctx, test.ID); err != nil {
		t.Fatalf("delete test: %v", err)
	}
	if err := catalog.DeleteDirection(ctx, backendDir.ID); err != nil {
		t.Fatalf("delete unreferenced direction: %v", err)
	}
	if err := catalog.DeleteDirection(ctx, backendDir.ID); !errors.Is(err, domain.ErrDirectionNotFound) {
		t.Fatalf("expected ErrDirectionNotFound, got %v", err)
	}
	directions, err := catalog.ListDirections(ctx)
	if err != nil {
		t.Fatalf("list directions: %v", err)
	}
	if len(directions) != 1 || directions[0].ID != spare.ID {
		t.Fatalf("expected only the spare direction left, got %+v", directions)
	}
}
