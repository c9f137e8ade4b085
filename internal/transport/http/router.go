package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/participant"
)

// RegistrationService is the boundary the transport layer talks to. The
// concrete implementation lives in internal/registration.
type RegistrationService interface {
	Register(ctx context.Context, p participant.Participant) (participant.Participant, error)
	Confirm(ctx context.Context, email, code string) (bool, error)
	Resend(ctx context.Context, email string) error
	List(ctx context.Context) ([]participant.Participant, error)
	Get(ctx context.Context, id int64) (participant.Participant, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Pinger reports backend health for the readiness endpoint.
type Pinger interface {
	Health(ctx context.Context) error
}

// Handler is the thin HTTP layer. It delegates to the registration service
// without embedding business logic so transport concerns remain isolated.
type Handler struct {
	service RegistrationService
	health  Pinger
	log     *slog.Logger
}

func NewHandler(service RegistrationService, health Pinger, log *slog.Logger) *Handler {
	return &Handler{service: service, health: health, log: log}
}

// NewRouter wires all public endpoints.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(requestID)
	r.Use(requestLog(h.log))

	r.Route("/participants", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Get("/", h.handleList)
		r.Post("/verify", h.handleVerify)
		r.Post("/resend", h.handleResend)
		r.Get("/{id}", h.handleGet)
		r.Delete("/{id}", h.handleDelete)
	})

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
