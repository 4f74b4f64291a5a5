package plans

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/logger"
)

// PlanResolver resolves the plan id a tenant is subscribed to.
type PlanResolver func(ctx context.Context, t Tenant) (string, error)

// StaticPlans resolves plans from a user id assignment table and falls back
// to fallback for unknown users.
func StaticPlans(assignments map[string]string, fallback string) PlanResolver {
	assignments = maps.Clone(assignments)
	return func(_ context.Context, t Tenant) (string, error) {
		if id, ok := assignments[t.UserID]; ok {
			return id, nil
		}
		return fallback, nil
	}
}

// Service answers plan status and limit checks for tenants.
// The catalog is immutable after construction.
type Service struct {
	plans    map[string]Plan
	counters CounterRegistry
	resolve  PlanResolver
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService loads the catalog from src and validates it. A nil resolver puts
// every tenant on the free plan.
func NewService(ctx context.Context, src Source, counters CounterRegistry, resolve PlanResolver, opts ...ServiceOption) (*Service, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}
	if counters == nil {
		counters = NewRegistry()
	}
	if resolve == nil {
		resolve = StaticPlans(nil, string(entitlement.PlanFree))
	}

	s := &Service{
		plans:    plans,
		counters: counters,
		resolve:  resolve,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("plans"))
	return s, nil
}

// Plans returns the catalog ordered by id.
func (s *Service) Plans() []Plan {
	out := make([]Plan, 0, len(s.plans))
	for _, id := range slices.Sorted(maps.Keys(s.plans)) {
		out = append(out, s.plans[id].clone())
	}
	return out
}

// VerifyPlan checks that planID exists in the catalog.
func (s *Service) VerifyPlan(planID string) error {
	if _, ok := s.plans[planID]; !ok {
		return ErrPlanNotFound
	}
	return nil
}

func (s *Service) planFor(ctx context.Context, t Tenant) (Plan, error) {
	id, err := s.resolve(ctx, t)
	if err != nil {
		return Plan{}, err
	}
	plan, ok := s.plans[id]
	if !ok {
		return Plan{}, errors.Join(ErrPlanNotFound, errors.New(id))
	}
	return plan, nil
}

// Status builds the plan status document for t: plan label, every limit and
// feature of the plan, and the usage of every field with a registered counter.
func (s *Service) Status(ctx context.Context, t Tenant) (entitlement.StatusPayload, error) {
	plan, err := s.planFor(ctx, t)
	if err != nil {
		return entitlement.StatusPayload{}, err
	}

	opts := []entitlement.SnapshotOption{entitlement.WithBusinessID(t.BusinessID)}
	for field := range plan.Limits {
		l, _ := plan.Limit(field)
		opts = append(opts, entitlement.WithLimit(field, l))
	}
	for field, enabled := range plan.Features {
		opts = append(opts, entitlement.WithFlag(field, enabled))
	}
	for _, field := range slices.Sorted(maps.Keys(s.counters)) {
		n, err := s.counters[field](ctx, t)
		if err != nil {
			return entitlement.StatusPayload{}, errors.Join(ErrFailedToCountResourceUsage, err)
		}
		opts = append(opts, entitlement.WithUsage(field, n))
	}

	return entitlement.NewSnapshot(entitlement.PlanLabel(plan.ID), opts...).Payload(), nil
}

// CanCreate checks whether t may create one more res. It returns a
// *LimitError when the plan cap is reached. Resources without a rule in the
// plan are allowed.
func (s *Service) CanCreate(ctx context.Context, t Tenant, res entitlement.Resource) error {
	limitField, ok := res.LimitField()
	if !ok {
		return ErrInvalidResource
	}
	usageField, _ := res.UsageField()

	plan, err := s.planFor(ctx, t)
	if err != nil {
		return err
	}

	limit, ok := plan.Limit(limitField)
	if !ok || limit.IsUnlimited() {
		return nil
	}

	counter, ok := s.counters[usageField]
	if !ok {
		return ErrNoCounterRegistered
	}
	current, err := counter(ctx, t)
	if err != nil {
		return errors.Join(ErrFailedToCountResourceUsage, err)
	}

	if !limit.Allows(current) {
		capValue, _ := limit.Value()
		s.logger.InfoContext(ctx, "plans: limit reached",
			logger.UserID(t.UserID),
			logger.BusinessID(t.BusinessID),
			logger.Plan(plan.ID),
			logger.Resource(string(res)),
		)
		return &LimitError{Resource: res, Limit: capValue, Current: current}
	}
	return nil
}

// HasFeature reports whether the tenant's plan enables f.
func (s *Service) HasFeature(ctx context.Context, t Tenant, f entitlement.Feature) bool {
	field, ok := f.Field()
	if !ok {
		return false
	}
	plan, err := s.planFor(ctx, t)
	if err != nil {
		return false
	}
	return plan.Features[field]
}

func validatePlans(plans map[string]Plan) error {
	if len(plans) == 0 {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("catalog is empty"))
	}
	for id, plan := range plans {
		if plan.ID != id {
			return errors.Join(ErrInvalidPlanConfiguration, errors.New("plan key "+id+" does not match id "+plan.ID))
		}
		if err := plan.validate(); err != nil {
			return errors.Join(ErrInvalidPlanConfiguration, err)
		}
	}
	return nil
}
