package plans

import (
	"errors"
	"fmt"

	"github.com/invoiceaz/planguard/pkg/entitlement"
)

var (
	ErrPlanNotFound             = errors.New("plans.errors.plan_not_found")
	ErrInvalidPlanConfiguration = errors.New("plans.errors.invalid_plan_configuration")
	ErrFailedToLoadPlans        = errors.New("plans.errors.failed_to_load_plans")

	ErrLimitExceeded              = errors.New("plans.errors.limit_exceeded")
	ErrInvalidResource            = errors.New("plans.errors.invalid_resource")
	ErrNoCounterRegistered        = errors.New("plans.errors.no_counter_registered")
	ErrFailedToCountResourceUsage = errors.New("plans.errors.failed_to_count_resource_usage")

	ErrTenantNotInContext = errors.New("plans.errors.tenant_not_in_context")
)

// LimitError is returned by CanCreate when the plan cap is reached.
// It matches ErrLimitExceeded with errors.Is.
type LimitError struct {
	Resource entitlement.Resource
	Limit    int64
	Current  int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("plans: %s limit reached (%d of %d)", e.Resource, e.Current, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrLimitExceeded }
