package plans

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/gate"
	"github.com/invoiceaz/planguard/pkg/httpserver"
	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/requestid"
)

// Authenticator maps a bearer token to a user id.
type Authenticator func(ctx context.Context, token string) (userID string, err error)

// TokenAsUserID treats the bearer token itself as the user id. Development only.
func TokenAsUserID(_ context.Context, token string) (string, error) {
	return token, nil
}

type handler struct {
	svc   *Service
	usage *MemoryUsage
	auth  Authenticator
	log   *slog.Logger
}

// HandlerOption configures the HTTP handler.
type HandlerOption func(*handler)

// WithAuthenticator replaces the bearer token check. The default treats the token as the user id.
func WithAuthenticator(a Authenticator) HandlerOption {
	return func(h *handler) {
		if a != nil {
			h.auth = a
		}
	}
}

// WithHandlerLogger sets the logger for request failures.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler exposes svc over HTTP the way the entitlement API does:
//
//	GET  /healthz
//	GET  /plans/                 catalog
//	GET  /users/plan/status/     plan status for the caller (?business_id=)
//	POST /{resource}/            create one resource, 403 plan_limit when capped
//
// Created resources are only counted in usage.
func NewHandler(svc *Service, usage *MemoryUsage, opts ...HandlerOption) http.Handler {
	h := &handler{svc: svc, usage: usage, auth: TokenAsUserID, log: logger.Nop()}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(h.log, func(context.Context) error {
		if len(svc.Plans()) == 0 {
			return ErrInvalidPlanConfiguration
		}
		return nil
	}))
	r.Get("/plans/", h.listPlans)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)
		r.Get("/users/plan/status/", h.status)
		r.Post("/{resource}/", h.create)
	})
	return r
}

func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		userID, err := h.auth(r.Context(), strings.TrimSpace(token))
		if err != nil || userID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			return
		}

		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			businessID = r.Header.Get("X-Business-ID")
		}
		ctx := WithTenant(r.Context(), Tenant{UserID: userID, BusinessID: businessID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *handler) listPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Plans())
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	t, ok := TenantFromContext(r.Context())
	if !ok {
		h.fail(w, r, ErrTenantNotInContext)
		return
	}
	payload, err := h.svc.Status(r.Context(), t)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	t, ok := TenantFromContext(r.Context())
	if !ok {
		h.fail(w, r, ErrTenantNotInContext)
		return
	}
	res := entitlement.Resource(chi.URLParam(r, "resource"))
	if !res.Valid() {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	if err := h.svc.CanCreate(r.Context(), t, res); err != nil {
		var limitErr *LimitError
		if errors.As(err, &limitErr) {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"code":             gate.CodePlanLimit,
				"detail":           "You have reached the limit of your current plan.",
				"limit":            limitErr.Limit,
				"current":          limitErr.Current,
				"upgrade_required": true,
			})
			return
		}
		h.fail(w, r, err)
		return
	}

	field, _ := res.UsageField()
	h.usage.Add(t, field, 1)
	writeJSON(w, http.StatusCreated, map[string]string{"id": uuid.NewString()})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "plans: request failed", logger.Error(err))
	if errors.Is(err, ErrPlanNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "A server error occurred."})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
