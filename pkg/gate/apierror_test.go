package gate_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceaz/planguard/pkg/gate"
)

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want gate.APIError
	}{
		{
			name: "plan limit payload",
			body: `{"code":"plan_limit","detail":"Limit reached","limit":10,"current":10,"upgrade_required":true}`,
			want: gate.APIError{Status: 403, Code: "plan_limit", Detail: "Limit reached", Limit: intPtr(10), Current: intPtr(10), UpgradeRequired: true},
		},
		{
			name: "list wrapped values",
			body: `{"code":["plan_limit"],"detail":["Limit reached"],"limit":["5"],"upgrade_required":["true"]}`,
			want: gate.APIError{Status: 403, Code: "plan_limit", Detail: "Limit reached", Limit: intPtr(5), UpgradeRequired: true},
		},
		{
			name: "nested detail object",
			body: `{"detail":{"code":"plan_limit","detail":"Inner","limit":3}}`,
			want: gate.APIError{Status: 403, Code: "plan_limit", Detail: "Inner", Limit: intPtr(3)},
		},
		{
			name: "error field",
			body: `{"error":"Something broke"}`,
			want: gate.APIError{Status: 403, Message: "Something broke"},
		},
		{
			name: "non field errors",
			body: `{"non_field_errors":["Invoice number already used."]}`,
			want: gate.APIError{Status: 403, Detail: "Invoice number already used."},
		},
		{
			name: "fractional limit ignored",
			body: `{"limit":2.5,"current":1.0}`,
			want: gate.APIError{Status: 403, Current: intPtr(1)},
		},
		{
			name: "html body",
			body: `<html>Bad gateway</html>`,
			want: gate.APIError{Status: 403},
		},
		{
			name: "empty body",
			body: ``,
			want: gate.APIError{Status: 403},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := gate.ParseAPIError(403, []byte(tt.body))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "detail", (&gate.APIError{Detail: "detail", Message: "msg"}).Error())
	assert.Equal(t, "msg", (&gate.APIError{Message: "msg"}).Error())
	assert.Equal(t, "api error 403: plan_limit", (&gate.APIError{Status: 403, Code: "plan_limit"}).Error())
	assert.Equal(t, "api error 500", (&gate.APIError{Status: 500}).Error())
	assert.Empty(t, (&gate.APIError{Status: 500}).UserMessage())
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want gate.ErrorKind
	}{
		{"nil", nil, gate.KindGeneric},
		{"plain error", errors.New("limit reached"), gate.KindGeneric},
		{"plan limit code", &gate.APIError{Code: "plan_limit"}, gate.KindLimitExceeded},
		{"code is case insensitive", &gate.APIError{Code: "PLAN_LIMIT"}, gate.KindLimitExceeded},
		{"wrapped", fmt.Errorf("create client: %w", &gate.APIError{Code: "plan_limit"}), gate.KindLimitExceeded},
		{"upgrade required code without limit", &gate.APIError{Code: "upgrade_required"}, gate.KindFeatureLocked},
		{"upgrade required code with limit", &gate.APIError{Code: "upgrade_required", Limit: intPtr(1)}, gate.KindLimitExceeded},
		{"feature locked code", &gate.APIError{Code: "feature_locked"}, gate.KindFeatureLocked},
		{"other code wins over substring", &gate.APIError{Code: "invalid", Detail: "limit must be positive"}, gate.KindGeneric},
		{"substring in detail", &gate.APIError{Detail: "Monthly Limit reached"}, gate.KindLimitExceeded},
		{"substring in error", &gate.APIError{Message: "client limit"}, gate.KindLimitExceeded},
		{"upgrade flag only", &gate.APIError{UpgradeRequired: true}, gate.KindFeatureLocked},
		{"upgrade flag with limit", &gate.APIError{UpgradeRequired: true, Limit: intPtr(5)}, gate.KindLimitExceeded},
		{"unrelated detail", &gate.APIError{Detail: "Invalid phone number"}, gate.KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, gate.ClassifyError(tt.err))
		})
	}
}
