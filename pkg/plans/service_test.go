package plans_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/plans"
)

var (
	owner    = plans.Tenant{UserID: "u-1", BusinessID: "b-1"}
	proOwner = plans.Tenant{UserID: "u-pro", BusinessID: "b-9"}
)

func newService(t *testing.T, usage *plans.MemoryUsage) *plans.Service {
	t.Helper()
	svc, err := plans.NewService(context.Background(),
		plans.NewInMemSource(plans.DefaultCatalog()),
		usage.Counters(),
		plans.StaticPlans(map[string]string{"u-pro": "pro", "u-ghost": "gold"}, "free"),
	)
	require.NoError(t, err)
	return svc
}

func TestNewService_Validation(t *testing.T) {
	t.Parallel()

	neg := int64(-1)
	tests := []struct {
		name    string
		src     plans.Source
		wantErr error
	}{
		{"empty catalog", plans.NewInMemSource(nil), plans.ErrInvalidPlanConfiguration},
		{"key mismatch", plans.NewInMemSource(map[string]plans.Plan{"free": {ID: "pro"}}), plans.ErrInvalidPlanConfiguration},
		{"negative limit", plans.NewInMemSource(map[string]plans.Plan{
			"free": {ID: "free", Limits: map[string]*int64{entitlement.FieldClients: &neg}},
		}), plans.ErrInvalidPlanConfiguration},
		{"load failure", failingSource{}, plans.ErrFailedToLoadPlans},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := plans.NewService(context.Background(), tt.src, nil, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type failingSource struct{}

func (failingSource) Load(context.Context) (map[string]plans.Plan, error) {
	return nil, errors.New("disk on fire")
}

func TestService_Status(t *testing.T) {
	t.Parallel()

	usage := plans.NewMemoryUsage(nil)
	usage.Add(owner, entitlement.FieldClients, 3)
	usage.Add(owner, entitlement.FieldInvoicesThisMonth, 2)
	svc := newService(t, usage)

	payload, err := svc.Status(context.Background(), owner)
	require.NoError(t, err)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	snap, err := entitlement.DecodeStatus(bytesReader(raw), owner.BusinessID, time.Now())
	require.NoError(t, err)

	assert.Equal(t, entitlement.PlanFree, snap.Plan)

	eval := entitlement.New()
	d := eval.CheckQuantity(snap, entitlement.ResourceClients)
	assert.Equal(t, entitlement.Cap(10), d.Limit)
	assert.Equal(t, int64(3), d.Current)

	d = eval.CheckQuantity(snap, entitlement.ResourceInvoices)
	assert.Equal(t, entitlement.Cap(5), d.Limit)
	assert.Equal(t, int64(2), d.Current)

	assert.True(t, eval.IsFeatureLocked(snap, entitlement.FeatureCSVExport))
	assert.False(t, eval.IsPro(snap))
}

func TestService_StatusPro(t *testing.T) {
	t.Parallel()

	svc := newService(t, plans.NewMemoryUsage(nil))
	payload, err := svc.Status(context.Background(), proOwner)
	require.NoError(t, err)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"plan":"pro"`)
	assert.Contains(t, string(raw), `"clients":null`)
	assert.Contains(t, string(raw), `"csv_export":true`)
}

func TestService_StatusUnknownPlan(t *testing.T) {
	t.Parallel()

	svc := newService(t, plans.NewMemoryUsage(nil))
	_, err := svc.Status(context.Background(), plans.Tenant{UserID: "u-ghost"})
	assert.ErrorIs(t, err, plans.ErrPlanNotFound)
}

func TestService_CanCreate(t *testing.T) {
	t.Parallel()

	usage := plans.NewMemoryUsage(nil)
	svc := newService(t, usage)
	ctx := context.Background()

	for range 10 {
		require.NoError(t, svc.CanCreate(ctx, owner, entitlement.ResourceClients))
		usage.Add(owner, entitlement.FieldClients, 1)
	}

	err := svc.CanCreate(ctx, owner, entitlement.ResourceClients)
	require.ErrorIs(t, err, plans.ErrLimitExceeded)
	var limitErr *plans.LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, int64(10), limitErr.Limit)
	assert.Equal(t, int64(10), limitErr.Current)
	assert.Equal(t, entitlement.ResourceClients, limitErr.Resource)

	// clients are counted across all businesses of the account
	other := plans.Tenant{UserID: "u-1", BusinessID: "b-2"}
	err = svc.CanCreate(ctx, other, entitlement.ResourceClients)
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, int64(10), limitErr.Current)

	status, err := svc.Status(ctx, other)
	require.NoError(t, err)
	raw, err := json.Marshal(status)
	require.NoError(t, err)
	snap, err := entitlement.DecodeStatus(bytesReader(raw), other.BusinessID, time.Now())
	require.NoError(t, err)
	n, _ := snap.Usage(entitlement.FieldClients)
	assert.Equal(t, int64(10), n)

	// products stay per business
	usage.Add(owner, entitlement.FieldProducts, 50)
	assert.NoError(t, svc.CanCreate(ctx, other, entitlement.ResourceProducts))
	// unlimited on pro
	usage.Add(proOwner, entitlement.FieldClients, 500)
	assert.NoError(t, svc.CanCreate(ctx, proOwner, entitlement.ResourceClients))

	assert.ErrorIs(t, svc.CanCreate(ctx, owner, entitlement.Resource("spaceships")), plans.ErrInvalidResource)
}

func TestService_CanCreateWithoutCounter(t *testing.T) {
	t.Parallel()

	svc, err := plans.NewService(context.Background(), plans.NewInMemSource(plans.DefaultCatalog()), nil, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CanCreate(context.Background(), owner, entitlement.ResourceInvoices), plans.ErrNoCounterRegistered)
}

func TestService_CanCreateCounterFailure(t *testing.T) {
	t.Parallel()

	reg := plans.NewRegistry()
	reg.Register(entitlement.FieldBusinesses, func(context.Context, plans.Tenant) (int64, error) {
		return 0, errors.New("db down")
	})
	svc, err := plans.NewService(context.Background(), plans.NewInMemSource(plans.DefaultCatalog()), reg, nil)
	require.NoError(t, err)

	err = svc.CanCreate(context.Background(), owner, entitlement.ResourceBusinesses)
	assert.ErrorIs(t, err, plans.ErrFailedToCountResourceUsage)

	_, err = svc.Status(context.Background(), owner)
	assert.ErrorIs(t, err, plans.ErrFailedToCountResourceUsage)
}

func TestService_HasFeatureAndCatalog(t *testing.T) {
	t.Parallel()

	svc := newService(t, plans.NewMemoryUsage(nil))
	ctx := context.Background()

	assert.False(t, svc.HasFeature(ctx, owner, entitlement.FeatureForecast))
	assert.True(t, svc.HasFeature(ctx, proOwner, entitlement.FeatureForecast))
	assert.False(t, svc.HasFeature(ctx, proOwner, entitlement.FeatureCustomThemes))
	assert.False(t, svc.HasFeature(ctx, proOwner, entitlement.Feature("teleport")))

	ids := make([]string, 0, 3)
	for _, p := range svc.Plans() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"free", "premium", "pro"}, ids)

	assert.NoError(t, svc.VerifyPlan("premium"))
	assert.ErrorIs(t, svc.VerifyPlan("gold"), plans.ErrPlanNotFound)
}

func TestRegistry_RegisterNilPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { plans.NewRegistry().Register(entitlement.FieldClients, nil) })
}
