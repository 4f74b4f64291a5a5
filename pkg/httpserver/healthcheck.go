package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/invoiceaz/planguard/pkg/logger"
)

// Check reports whether one dependency is ready.
type Check func(ctx context.Context) error

// HealthHandler answers {"status":"alive"} when no checks are given,
// {"status":"ready"} when all pass, and 503 {"status":"not_ready"} otherwise.
func HealthHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "alive", http.StatusOK
		if len(checks) > 0 {
			status = "ready"
		}
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "httpserver: readiness check failed", logger.Error(err))
				status, code = "not_ready", http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
