package session

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/logger"
)

// State is a consistent view of the authenticated account and its active business.
type State struct {
	Identity   entitlement.Identity
	Token      string
	BusinessID string
}

// Authenticated reports whether a user is logged in.
func (s State) Authenticated() bool {
	return s.Identity.UserID != ""
}

// ChangeKind identifies what happened to the session.
type ChangeKind int

const (
	ChangeLogin ChangeKind = iota + 1
	ChangeBusiness
	ChangeLogout
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeLogin:
		return "login"
	case ChangeBusiness:
		return "business"
	case ChangeLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after the session state moved from Prev to Next.
type Change struct {
	Kind ChangeKind
	Prev State
	Next State
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session holds the authenticated identity, bearer token and active business
// of one client. It is created at application start and cleared on Logout.
// All methods are safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	state  State
	epoch  uint64
	roles  map[string]Role
	subs   map[uint64]func(Change)
	nextID uint64
	logger *slog.Logger
}

// New creates an empty, unauthenticated session.
func New(opts ...Option) *Session {
	s := &Session{
		roles:  make(map[string]Role),
		subs:   make(map[uint64]func(Change)),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login replaces the current identity and token. The active business is reset
// and cached role hints are dropped.
func (s *Session) Login(id entitlement.Identity, token string) error {
	if id.UserID == "" {
		return ErrInvalidIdentity
	}

	s.mu.Lock()
	prev := s.state
	s.state = State{Identity: id, Token: token}
	next := s.state
	s.epoch++
	clear(s.roles)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.logger.Info("session: logged in", logger.UserID(id.UserID))
	notify(subs, Change{Kind: ChangeLogin, Prev: prev, Next: next})
	return nil
}

// Current returns the identity, token and business as one consistent value.
func (s *Session) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns the logged-in account, or the zero value when anonymous.
func (s *Session) Identity() entitlement.Identity {
	return s.Current().Identity
}

// Token returns the bearer token of the current login.
func (s *Session) Token() string {
	return s.Current().Token
}

// ActiveBusiness returns the selected business id, or "" when none is selected.
func (s *Session) ActiveBusiness() string {
	return s.Current().BusinessID
}

// SwitchBusiness selects the business context for subsequent requests.
// Selecting the already active business is a no-op and notifies nobody.
func (s *Session) SwitchBusiness(businessID string) error {
	s.mu.Lock()
	if !s.state.Authenticated() {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if s.state.BusinessID == businessID {
		s.mu.Unlock()
		return nil
	}
	prev := s.state
	s.state.BusinessID = businessID
	next := s.state
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.logger.Debug("session: business switched",
		logger.UserID(next.Identity.UserID),
		logger.BusinessID(businessID),
	)
	notify(subs, Change{Kind: ChangeBusiness, Prev: prev, Next: next})
	return nil
}

// Logout clears all session state. Logging out an anonymous session is a no-op.
func (s *Session) Logout() {
	s.mu.Lock()
	if !s.state.Authenticated() {
		s.mu.Unlock()
		return
	}
	prev := s.state
	s.state = State{}
	s.epoch++
	clear(s.roles)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	s.logger.Info("session: logged out", logger.UserID(prev.Identity.UserID))
	notify(subs, Change{Kind: ChangeLogout, Prev: prev})
}

// Subscribe registers fn to be called after every login, business switch and
// logout. Callbacks run synchronously on the goroutine that changed the
// session and must not mutate it. The returned func removes the subscription.
func (s *Session) Subscribe(fn func(Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) subscribersLocked() []func(Change) {
	if len(s.subs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subs[id])
	}
	return out
}

func notify(subs []func(Change), c Change) {
	for _, fn := range subs {
		fn(c)
	}
}
