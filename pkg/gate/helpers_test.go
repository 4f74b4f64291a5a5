package gate_test

import (
	"context"
	"sync"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/gate"
	"github.com/invoiceaz/planguard/pkg/planstatus"
)

// recordingPresenter keeps every call in order.
type recordingPresenter struct {
	mu      sync.Mutex
	events  []string
	prompts []gate.UpgradePrompt
	errors  []string
	closes  int
}

func (p *recordingPresenter) ShowUpgradePrompt(_ context.Context, prompt gate.UpgradePrompt) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "prompt")
	p.prompts = append(p.prompts, prompt)
}

func (p *recordingPresenter) ShowError(_ context.Context, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "error")
	p.errors = append(p.errors, msg)
}

func (p *recordingPresenter) CloseDialog(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "close")
	p.closes++
}

func (p *recordingPresenter) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// fakeAPI is an in-memory entitlement service: it serves plan status and
// enforces limits on create the way the real API does.
type fakeAPI struct {
	mu        sync.Mutex
	plan      entitlement.PlanLabel
	limits    map[string]entitlement.Limit
	flags     map[string]bool
	usage     map[string]int64
	fetches   int
	mutations int
}

func newFakeAPI(plan entitlement.PlanLabel) *fakeAPI {
	return &fakeAPI{
		plan:   plan,
		limits: make(map[string]entitlement.Limit),
		flags:  make(map[string]bool),
		usage:  make(map[string]int64),
	}
}

func (s *fakeAPI) FetchStatus(_ context.Context, req planstatus.FetchRequest) (*entitlement.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++

	opts := []entitlement.SnapshotOption{entitlement.WithBusinessID(req.BusinessID)}
	for field, l := range s.limits {
		opts = append(opts, entitlement.WithLimit(field, l))
	}
	for field, v := range s.flags {
		opts = append(opts, entitlement.WithFlag(field, v))
	}
	for field, n := range s.usage {
		opts = append(opts, entitlement.WithUsage(field, n))
	}
	return entitlement.NewSnapshot(s.plan, opts...), nil
}

func (s *fakeAPI) create(res entitlement.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	limitField, _ := res.LimitField()
	usageField, _ := res.UsageField()
	current := s.usage[usageField]
	if l, ok := s.limits[limitField]; ok && !l.Allows(current) {
		capValue, _ := l.Value()
		return &gate.APIError{
			Status:          403,
			Code:            gate.CodePlanLimit,
			Detail:          "Plan limit reached",
			Limit:           &capValue,
			Current:         &current,
			UpgradeRequired: true,
		}
	}
	s.usage[usageField] = current + 1
	s.mutations++
	return nil
}

func (s *fakeAPI) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

// staticProvider serves a fixed snapshot and counts refreshes.
type staticProvider struct {
	mu        sync.Mutex
	snap      *entitlement.Snapshot
	refreshes int
	loadErr   error
}

func (p *staticProvider) Snapshot(context.Context) *entitlement.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

func (p *staticProvider) Load(ctx context.Context) (*entitlement.Snapshot, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	return p.Snapshot(ctx), nil
}

func (p *staticProvider) Refresh(ctx context.Context) (*entitlement.Snapshot, error) {
	p.mu.Lock()
	p.refreshes++
	p.mu.Unlock()
	return p.Load(ctx)
}

func (p *staticProvider) Refreshes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshes
}

func intPtr(n int64) *int64 { return &n }
