package planstatus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/session"
)

// Provider serves plan status snapshots for the session's active
// (user, business) context with stale-while-revalidate semantics.
//
// Reads never fail: fetch errors are reported in Status.Err and the previous
// snapshot, if any, stays in place. Concurrent fetches for the same key share
// one request. Results are written only while their key is still the
// session's active key and no invalidation happened after the fetch started.
type Provider struct {
	sess    *session.Session
	fetcher Fetcher

	staleAfter   time.Duration
	fetchTimeout time.Duration
	retryBackoff time.Duration
	cacheSize    int
	now          func() time.Time
	logger       *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	entries *store
	seq     uint64
	floor   uint64 // raised on business switch, login and logout
	closed  bool

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	closeOnce   sync.Once
}

// New creates a provider bound to sess. It subscribes to session changes
// until Close is called. Panics if sess or f is nil.
func New(sess *session.Session, f Fetcher, opts ...Option) *Provider {
	if sess == nil || f == nil {
		panic("planstatus: session and fetcher are required")
	}

	p := &Provider{
		sess:         sess,
		fetcher:      f,
		staleAfter:   DefaultStaleAfter,
		fetchTimeout: DefaultFetchTimeout,
		retryBackoff: DefaultRetryBackoff,
		cacheSize:    DefaultCacheSize,
		now:          time.Now,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("planstatus"))
	p.entries = newStore(p.cacheSize)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.unsubscribe = sess.Subscribe(p.onSessionChange)
	return p
}

// Status returns the cached status for the active context without blocking.
// A missing or stale snapshot starts a background fetch.
func (p *Provider) Status(ctx context.Context) Status {
	st := p.sess.Current()
	if !st.Authenticated() {
		return Status{State: NotLoaded}
	}
	key := KeyOf(st)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Status{Key: key, State: NotLoaded, Err: ErrClosed}
	}

	e := p.entries.ensure(key)
	now := p.now()
	if p.freshLocked(e, now) {
		return Status{Key: key, State: Ready, Snapshot: e.snap, Err: e.err}
	}

	if !e.loading && (e.err == nil || now.Sub(e.failedAt) >= p.retryBackoff) {
		p.logger.DebugContext(ctx, "planstatus: background fetch",
			logger.UserID(key.UserID), logger.BusinessID(key.BusinessID))
		p.startLocked(key, st, e)
	}

	switch {
	case e.snap != nil:
		return Status{Key: key, State: Stale, Snapshot: e.snap, Err: e.err}
	case e.loading:
		return Status{Key: key, State: Loading, Err: e.err}
	default:
		return Status{Key: key, State: NotLoaded, Err: e.err}
	}
}

// Snapshot returns the latest snapshot for the active context, or nil.
// Evaluators treat nil as fully permissive.
func (p *Provider) Snapshot(ctx context.Context) *entitlement.Snapshot {
	return p.Status(ctx).Snapshot
}

// Load returns a fresh snapshot for the active context, waiting for a fetch
// when the cached one is missing or stale. Waiting stops when ctx is done;
// the fetch itself keeps running and still populates the cache.
func (p *Provider) Load(ctx context.Context) (*entitlement.Snapshot, error) {
	st := p.sess.Current()
	if !st.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	key := KeyOf(st)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	e := p.entries.ensure(key)
	if p.freshLocked(e, p.now()) {
		snap := e.snap
		p.mu.Unlock()
		return snap, nil
	}
	ch := p.startLocked(key, st, e)
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*entitlement.Snapshot), nil
	}
}

// Refresh invalidates the active context and waits for a new snapshot.
// Call it after a mutation that changes usage counts.
func (p *Provider) Refresh(ctx context.Context) (*entitlement.Snapshot, error) {
	p.InvalidateActive()
	return p.Load(ctx)
}

// Invalidate marks the snapshot for key as stale. Fetches already running
// for key are discarded when they finish; the next read fetches again.
func (p *Provider) Invalidate(key Key) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries.get(key)
	if !ok {
		return
	}
	p.seq++
	e.floor = p.seq
	e.invalidated = true
	e.failedAt = time.Time{}
}

// InvalidateActive invalidates the session's current key.
func (p *Provider) InvalidateActive() {
	st := p.sess.Current()
	if !st.Authenticated() {
		return
	}
	p.Invalidate(KeyOf(st))
}

// Len reports how many contexts are cached.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries.len()
}

// Close unsubscribes from the session, cancels running fetches and drops the cache.
func (p *Provider) Close() {
	p.closeOnce.Do(func() {
		p.unsubscribe()
		p.mu.Lock()
		p.closed = true
		p.entries.clear()
		p.mu.Unlock()
		p.cancel()
	})
}

func (p *Provider) onSessionChange(c session.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.floor = p.seq

	switch c.Kind {
	case session.ChangeLogout:
		p.entries.clear()
	case session.ChangeLogin:
		if c.Prev.Identity.UserID != c.Next.Identity.UserID {
			p.entries.clear()
		}
	}
	p.logger.Debug("planstatus: session changed", slog.String("change", c.Kind.String()),
		logger.UserID(c.Next.Identity.UserID), logger.BusinessID(c.Next.BusinessID))
}

func (p *Provider) freshLocked(e *entry, now time.Time) bool {
	return e.snap != nil && !e.invalidated && now.Sub(e.fetchedAt) < p.staleAfter
}

// startLocked joins or starts the fetch for key's current epoch.
func (p *Provider) startLocked(key Key, st session.State, e *entry) <-chan singleflight.Result {
	epoch := max(p.floor, e.floor)
	flight := fmt.Sprintf("%s#%d", key, epoch)
	if !e.loading || e.flight != flight {
		p.seq++
		e.loading = true
		e.loadingFrom = p.seq
		e.flight = flight
	}
	start := e.loadingFrom
	return p.group.DoChan(flight, func() (any, error) {
		return p.fetch(key, st, start)
	})
}

func (p *Provider) fetch(key Key, st session.State, start uint64) (*entitlement.Snapshot, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.fetchTimeout)
	defer cancel()

	began := p.now()
	snap, err := p.fetcher.FetchStatus(ctx, FetchRequest{
		Identity:   st.Identity,
		Token:      st.Token,
		BusinessID: st.BusinessID,
	})
	if err == nil {
		snap, err = p.accept(ctx, key, snap)
	}
	return p.commit(key, start, snap, err, p.now().Sub(began))
}

func (p *Provider) accept(ctx context.Context, key Key, snap *entitlement.Snapshot) (*entitlement.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("planstatus: fetch: %w", err)
	}
	if snap == nil {
		return nil, ErrEmptySnapshot
	}
	if snap.BusinessID != "" && snap.BusinessID != key.BusinessID {
		return nil, errors.Join(ErrBusinessMismatch,
			fmt.Errorf("requested %q, got %q", key.BusinessID, snap.BusinessID))
	}
	if snap.BusinessID == "" || snap.FetchedAt.IsZero() {
		snap = snap.Clone()
		snap.BusinessID = key.BusinessID
		if snap.FetchedAt.IsZero() {
			snap.FetchedAt = p.now()
		}
	}
	return snap, nil
}

func (p *Provider) commit(key Key, start uint64, snap *entitlement.Snapshot, err error, took time.Duration) (*entitlement.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	attrs := []any{logger.UserID(key.UserID), logger.BusinessID(key.BusinessID), logger.Duration(took)}

	if p.closed {
		return nil, ErrClosed
	}

	e, ok := p.entries.get(key)
	if ok && e.loadingFrom == start {
		e.loading = false
	}

	superseded := start <= p.floor || KeyOf(p.sess.Current()) != key || (ok && start <= e.floor)
	if superseded {
		p.logger.Debug("planstatus: discarding superseded fetch", attrs...)
		return nil, ErrSuperseded
	}
	if !ok {
		e = p.entries.ensure(key)
	}

	if err != nil {
		e.err = err
		e.failedAt = p.now()
		p.logger.Warn("planstatus: fetch failed", append(attrs, logger.Error(err))...)
		return nil, err
	}

	e.snap = snap
	e.fetchedAt = p.now()
	e.invalidated = false
	e.err = nil
	e.failedAt = time.Time{}
	p.logger.Debug("planstatus: snapshot stored", append(attrs, logger.Plan(string(snap.Plan)))...)
	return snap, nil
}
