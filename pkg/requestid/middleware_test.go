package requestid_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates id when missing", func(t *testing.T) {
		t.Parallel()
		var seen string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestid.FromContext(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(requestid.Header))
	})

	t.Run("reuses valid incoming id", func(t *testing.T) {
		t.Parallel()
		var seen string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestid.FromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestid.Header, "attempt_42-a")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "attempt_42-a", seen)
		assert.Equal(t, "attempt_42-a", rec.Header().Get(requestid.Header))
	})

	for _, invalid := range []string{
		"with space",
		"slash/inside",
		"<script>alert(1)</script>",
		strings.Repeat("a", 129),
	} {
		t.Run("replaces "+invalid[:min(len(invalid), 16)], func(t *testing.T) {
			t.Parallel()
			var seen string
			h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestid.FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(requestid.Header, invalid)
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, invalid, seen)
			assert.True(t, requestid.Valid(seen))
		})
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(context.Background()))

	ctx := requestid.WithContext(context.Background(), "abc-1")
	assert.Equal(t, "abc-1", requestid.FromContext(ctx))

	ignored := requestid.WithContext(context.Background(), "not valid!")
	assert.Empty(t, requestid.FromContext(ignored))

	same, id := requestid.Ensure(ctx)
	assert.Equal(t, "abc-1", id)
	assert.Equal(t, ctx, same)

	fresh, id := requestid.Ensure(context.Background())
	assert.Len(t, id, 36)
	assert.Equal(t, id, requestid.FromContext(fresh))
}

func TestLogExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithFormat(logger.FormatJSON),
		logger.WithContextExtractors(requestid.LogExtractor()),
	)

	log.InfoContext(requestid.WithContext(context.Background(), "corr-7"), "with id")
	log.InfoContext(context.Background(), "without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"corr-7"`)
	assert.NotContains(t, lines[1], "request_id")
}
