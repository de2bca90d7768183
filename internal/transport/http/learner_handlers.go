package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type submitRequest struct {
	TestID    string `json:"testId" validate:"required"`
	Answers   []*int `json:"answers"`
	TimeSpent int    `json:"timeSpent" validate:"gte=0"`
}

type submitResponse struct {
	Success        bool `json:"success"`
	Score          int  `json:"score"`
	TotalQuestions int  `json:"totalQuestions"`
	Percentage     int  `json:"percentage"`
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Accounts.Profile(r.Context(), identity(r.Context()).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) listTests(w http.ResponseWriter, r *http.Request) {
	id := identity(r.Context())
	tests, err := h.svc.Catalog.ListTestsForAccount(r.Context(), id.AccountID, id.IsAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tests)
}

func (h *Handler) getTest(w http.ResponseWriter, r *http.Request) {
	test, err := h.svc.Catalog.GetLearnerTest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, test)
}

func (h *Handler) submitTest(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}
	summary, err := h.svc.Submissions.Submit(r.Context(), identity(r.Context()).AccountID, req.TestID, req.Answers, req.TimeSpent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, submitResponse{
		Success:        true,
		Score:          summary.Score,
		TotalQuestions: summary.TotalQuestions,
		Percentage:     summary.Percentage,
	})
}

func (h *Handler) myResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Submissions.ResultsForAccount(r.Context(), identity(r.Context()).AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
