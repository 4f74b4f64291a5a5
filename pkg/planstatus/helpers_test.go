package planstatus_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/planstatus"
	"github.com/invoiceaz/planguard/pkg/session"
)

var alice = entitlement.Identity{UserID: "u-1", Email: "alice@invoice.az"}

type fetchReply struct {
	snap *entitlement.Snapshot
	err  error
}

type pendingFetch struct {
	req   planstatus.FetchRequest
	reply chan fetchReply
}

func (p pendingFetch) respond(snap *entitlement.Snapshot, err error) {
	p.reply <- fetchReply{snap: snap, err: err}
}

// scriptedFetcher parks every call until the test answers it.
type scriptedFetcher struct {
	calls chan pendingFetch
	count atomic.Int32
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{calls: make(chan pendingFetch, 64)}
}

func (f *scriptedFetcher) FetchStatus(ctx context.Context, req planstatus.FetchRequest) (*entitlement.Snapshot, error) {
	f.count.Add(1)
	p := pendingFetch{req: req, reply: make(chan fetchReply, 1)}
	f.calls <- p
	select {
	case r := <-p.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *scriptedFetcher) next(t *testing.T) pendingFetch {
	t.Helper()
	select {
	case p := <-f.calls:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("expected a fetch")
		return pendingFetch{}
	}
}

func (f *scriptedFetcher) none(t *testing.T) {
	t.Helper()
	select {
	case p := <-f.calls:
		t.Fatalf("unexpected fetch for business %q", p.req.BusinessID)
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func snapshotFor(business string, plan entitlement.PlanLabel, clients int64) *entitlement.Snapshot {
	return entitlement.NewSnapshot(plan,
		entitlement.WithBusinessID(business),
		entitlement.WithLimit(entitlement.FieldClients, entitlement.Cap(10)),
		entitlement.WithUsage(entitlement.FieldClients, clients),
	)
}

func loggedIn(t *testing.T, business string) *session.Session {
	t.Helper()
	s := session.New()
	require.NoError(t, s.Login(alice, "token-1"))
	if business != "" {
		require.NoError(t, s.SwitchBusiness(business))
	}
	return s
}

func waitReady(t *testing.T, p *planstatus.Provider) planstatus.Status {
	t.Helper()
	var st planstatus.Status
	require.Eventually(t, func() bool {
		st = p.Status(context.Background())
		return st.State == planstatus.Ready
	}, 2*time.Second, 5*time.Millisecond)
	return st
}
