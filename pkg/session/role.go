package session

import (
	"context"
	"fmt"
)

// Role is the account's membership role within a business.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// RoleSource is the authoritative lookup for membership roles, usually the API.
type RoleSource interface {
	Role(ctx context.Context, userID, businessID string) (Role, error)
}

// RoleSourceFunc adapts a function to RoleSource.
type RoleSourceFunc func(ctx context.Context, userID, businessID string) (Role, error)

func (f RoleSourceFunc) Role(ctx context.Context, userID, businessID string) (Role, error) {
	return f(ctx, userID, businessID)
}

// RoleHint returns the last role seen for businessID. The value comes from a
// local cache and may be outdated; use it for display only.
func (s *Session) RoleHint(businessID string) (Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[businessID]
	return r, ok
}

// ResolveRole asks src for the current user's role in the active business and
// refreshes the cached hint with the answer.
func (s *Session) ResolveRole(ctx context.Context, src RoleSource) (Role, error) {
	if src == nil {
		return "", ErrNoRoleSource
	}

	s.mu.RLock()
	st, epoch := s.state, s.epoch
	s.mu.RUnlock()

	if !st.Authenticated() {
		return "", ErrNotAuthenticated
	}
	if st.BusinessID == "" {
		return "", ErrNoActiveBusiness
	}

	role, err := src.Role(ctx, st.Identity.UserID, st.BusinessID)
	if err != nil {
		return "", fmt.Errorf("session: resolve role: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return "", ErrSessionChanged
	}
	s.roles[st.BusinessID] = role
	return role, nil
}

// IsOwner reports whether the user owns the active business. It always asks
// src; the cached hint is never trusted for capability checks.
func (s *Session) IsOwner(ctx context.Context, src RoleSource) (bool, error) {
	role, err := s.ResolveRole(ctx, src)
	if err != nil {
		return false, err
	}
	return role == RoleOwner, nil
}
