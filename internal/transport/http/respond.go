package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"quiz-platform/internal/auth"
	"quiz-platform/internal/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// failure maps a sentinel to its status and user-facing text.
type failure struct {
	target  error
	status  int
	message string
}

var failures = []failure{
	{auth.ErrMissingToken, http.StatusUnauthorized, "Требуется авторизация"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "Недействительный или просроченный токен"},
	{auth.ErrForbidden, http.StatusForbidden, "Доступ только для администраторов"},
	{domain.ErrTestNotFound, http.StatusNotFound, "Тест не найден"},
	{domain.ErrDirectionNotFound, http.StatusNotFound, "Направление не найдено"},
	{domain.ErrAccountNotFound, http.StatusNotFound, "Пользователь не найден"},
	{domain.ErrResultNotFound, http.StatusNotFound, "Результат не найден"},
	{domain.ErrAlreadySubmitted, http.StatusBadRequest, "Вы уже проходили этот тест"},
	{domain.ErrDirectionInUse, http.StatusBadRequest, "Направление используется пользователями или тестами"},
	{domain.ErrDirectionExists, http.StatusBadRequest, "Направление с таким названием уже существует"},
	{domain.ErrUnknownDirection, http.StatusBadRequest, "Указанное направление не существует"},
	{domain.ErrLoginTaken, http.StatusBadRequest, "Пользователь с таким логином уже существует"},
	{domain.ErrTelegramTaken, http.StatusBadRequest, "Пользователь с таким Telegram уже существует"},
	{domain.ErrInvalidCredentials, http.StatusBadRequest, "Неверный логин или пароль"},
	{domain.ErrInvalidOrExpiredCode, http.StatusBadRequest, "Неверный или просроченный код"},
}

const internalMessage = "Внутренняя ошибка сервера"

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError classifies err; anything unknown is logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("http: %s %s: %v", r.Method, r.URL.Path, err)
	}
	respondJSON(w, status, errorResponse{Success: false, Message: message})
}

func classify(err error) (int, string) {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) || errors.Is(err, domain.ErrValidation) {
		return http.StatusBadRequest, validationMessage(err)
	}
	for _, f := range failures {
		if errors.Is(err, f.target) {
			return f.status, f.message
		}
	}
	return http.StatusInternalServerError, internalMessage
}

// validationMessage names the offending request field; service-level details stay in English and are not shown.
func validationMessage(err error) string {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		return "Некорректное поле: " + invalid[0].Field()
	}
	return "Некорректные данные"
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func badRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: message})
}
