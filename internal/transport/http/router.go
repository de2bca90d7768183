package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"quiz-platform/internal/app"
	"quiz-platform/internal/auth"
)

// Authenticator resolves a bearer token to the caller.
type Authenticator interface {
	Authenticate(token string) (auth.Identity, error)
}

// Services bundles the use cases the API exposes.
type Services struct {
	Accounts     *app.AccountService
	Catalog      *app.CatalogService
	Submissions  *app.SubmissionService
	Verification *app.VerificationService
	Feed         *app.ResultFeed
}

// Handler serves the JSON API.
type Handler struct {
	svc      Services
	tokens   Authenticator
	validate *validator.Validate
	results  *ResultsWSHandler
}

func NewHandler(svc Services, tokens Authenticator) *Handler {
	return &Handler{
		svc:      svc,
		tokens:   tokens,
		validate: newValidator(),
		results:  NewResultsWSHandler(svc.Feed),
	}
}

// Router mounts every route. allowedOrigins feeds CORS; empty allows any origin.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/login", h.login)
	r.Post("/register", h.register)
	r.Post("/send-verification", h.sendVerification)
	r.Post("/verify-code", h.verifyCode)
	r.Get("/directions", h.listDirections)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authenticate)
		pr.Get("/profile", h.profile)
		pr.Get("/tests", h.listTests)
		pr.Get("/tests/{id}", h.getTest)
		pr.Post("/submit-test", h.submitTest)
		pr.Get("/my-results", h.myResults)

		pr.Route("/admin", func(ar chi.Router) {
			ar.Use(requireAdmin)

			ar.Get("/tests", h.adminListTests)
			ar.Post("/tests", h.adminCreateTest)
			ar.Get("/tests/{id}", h.adminGetTest)
			ar.Put("/tests/{id}", h.adminUpdateTest)
			ar.Delete("/tests/{id}", h.adminDeleteTest)

			ar.Get("/directions", h.listDirections)
			ar.Post("/directions", h.adminCreateDirection)
			ar.Put("/directions/{id}", h.adminRenameDirection)
			ar.Delete("/directions/{id}", h.adminDeleteDirection)

			ar.Get("/users", h.adminListUsers)
			ar.Put("/users/{id}", h.adminUpdateUser)
			ar.Delete("/users/{id}", h.adminDeleteUser)

			ar.Get("/results", h.adminListResults)
			ar.Delete("/results/{id}", h.adminDeleteResult)
			ar.Get("/results/live", h.results.ServeWS)
			ar.Get("/statistics", h.adminStatistics)
		})
	})
	return r
}

// authenticate requires a valid bearer token. The token may also come from ?token=
// because browsers cannot set headers on websocket upgrades.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.tokens.Authenticate(bearerToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

func identity(ctx context.Context) auth.Identity {
	id, _ := auth.IdentityFromContext(ctx)
	return id
}

// decode reads a JSON body and runs struct validation.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "Некорректный JSON")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}
