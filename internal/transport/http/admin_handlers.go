package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"quiz-platform/internal/app"
	"quiz-platform/internal/domain"
)

type questionRequest struct {
	ID       int      `json:"id"`
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"min=2,dive,required"`
	Correct  int      `json:"correct" validate:"gte=0"`
}

type testRequest struct {
	Title     string            `json:"title" validate:"required"`
	Direction string            `json:"direction" validate:"required"`
	TimeLimit int               `json:"timeLimit" validate:"gte=0"`
	Attempts  int               `json:"attempts" validate:"gte=0"`
	Questions []questionRequest `json:"questions" validate:"dive"`
}

func (t testRequest) input() app.TestInput {
	questions := make([]domain.Question, 0, len(t.Questions))
	for _, q := range t.Questions {
		questions = append(questions, domain.Question{ID: q.ID, Prompt: q.Question, Options: q.Options, Correct: q.Correct})
	}
	return app.TestInput{
		Title:       t.Title,
		DirectionID: t.Direction,
		TimeLimit:   t.TimeLimit,
		Attempts:    t.Attempts,
		Questions:   questions,
	}
}

type directionRequest struct {
	Name string `json:"name" validate:"required"`
}

type accountPatchRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Direction *string `json:"direction"`
	IsAdmin   *bool   `json:"isAdmin"`
}

func (h *Handler) adminListTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.svc.Catalog.ListTests(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tests)
}

func (h *Handler) adminGetTest(w http.ResponseWriter, r *http.Request) {
	test, err := h.svc.Catalog.GetTest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, test)
}

func (h *Handler) adminCreateTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if !h.decode(w, r, &req) {
		return
	}
	test, err := h.svc.Catalog.CreateTest(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, test)
}

func (h *Handler) adminUpdateTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if !h.decode(w, r, &req) {
		return
	}
	test, err := h.svc.Catalog.UpdateTest(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, test)
}

func (h *Handler) adminDeleteTest(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteTest(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (h *Handler) adminCreateDirection(w http.ResponseWriter, r *http.Request) {
	var req directionRequest
	if !h.decode(w, r, &req) {
		return
	}
	direction, err := h.svc.Catalog.CreateDirection(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, direction)
}

func (h *Handler) adminRenameDirection(w http.ResponseWriter, r *http.Request) {
	var req directionRequest
	if !h.decode(w, r, &req) {
		return
	}
	direction, err := h.svc.Catalog.RenameDirection(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, direction)
}

func (h *Handler) adminDeleteDirection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteDirection(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (h *Handler) adminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Accounts.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req accountPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Accounts.UpdateAccount(r.Context(), chi.URLParam(r, "id"), app.AccountPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		DirectionID: req.Direction,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Accounts.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (h *Handler) adminListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Submissions.ListResults(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *Handler) adminDeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Submissions.DeleteResult(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (h *Handler) adminStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Submissions.Statistics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
