package http

import (
	"net/http"

	"quiz-platform/internal/app"
	"quiz-platform/internal/domain"
)

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success bool               `json:"success"`
	Token   string             `json:"token"`
	User    domain.AccountView `json:"user"`
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Direction string `json:"direction" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Telegram  string `json:"telegram" validate:"required"`
	Login     string `json:"login" validate:"required"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

type telegramRequest struct {
	Telegram string `json:"telegram" validate:"required"`
}

type verifyCodeRequest struct {
	Telegram string `json:"telegram" validate:"required"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
}

type sendVerificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DevCode string `json:"devCode,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, user, err := h.svc.Accounts.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, User: user})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	_, err := h.svc.Accounts.Register(r.Context(), app.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DirectionID: req.Direction,
		Phone:       req.Phone,
		Telegram:    req.Telegram,
		Login:       req.Login,
		Password:    req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, statusResponse{Success: true, Message: "Регистрация прошла успешно"})
}

func (h *Handler) sendVerification(w http.ResponseWriter, r *http.Request) {
	var req telegramRequest
	if !h.decode(w, r, &req) {
		return
	}
	issued, err := h.svc.Verification.IssueCode(r.Context(), req.Telegram)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if issued.ChannelBound {
		respondJSON(w, http.StatusOK, sendVerificationResponse{Success: true, Message: "Код отправлен в Telegram"})
		return
	}
	respondJSON(w, http.StatusOK, sendVerificationResponse{
		Success: true,
		Message: "Откройте бота и отправьте /start, чтобы получать коды в Telegram",
		DevCode: issued.Code,
	})
}

func (h *Handler) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Verification.VerifyCode(r.Context(), req.Telegram, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (h *Handler) listDirections(w http.ResponseWriter, r *http.Request) {
	directions, err := h.svc.Catalog.ListDirections(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, directions)
}
