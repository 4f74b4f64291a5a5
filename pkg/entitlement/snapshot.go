package entitlement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"time"
)

// Snapshot is the tenant's entitlement state as last fetched from the service.
// It is immutable once built; consumers read it through accessor methods.
type Snapshot struct {
	Plan       PlanLabel
	BusinessID string    // business context the snapshot was fetched for, empty if none
	FetchedAt  time.Time // used for staleness only

	quantities map[string]Limit
	flags      map[string]bool
	usage      map[string]int64
}

// SnapshotOption configures a Snapshot built with NewSnapshot.
type SnapshotOption func(*Snapshot)

// WithLimit sets the cap stored under a limit field.
func WithLimit(field string, l Limit) SnapshotOption {
	return func(s *Snapshot) { s.quantities[field] = l }
}

// WithFlag sets a feature flag stored under a limit field.
func WithFlag(field string, enabled bool) SnapshotOption {
	return func(s *Snapshot) { s.flags[field] = enabled }
}

// WithUsage sets the usage count stored under a usage field. Negative values are clamped to 0.
func WithUsage(field string, n int64) SnapshotOption {
	return func(s *Snapshot) { s.usage[field] = max(n, 0) }
}

// WithBusinessID records the business context of the snapshot.
func WithBusinessID(id string) SnapshotOption {
	return func(s *Snapshot) { s.BusinessID = id }
}

// WithFetchedAt records the fetch time of the snapshot.
func WithFetchedAt(t time.Time) SnapshotOption {
	return func(s *Snapshot) { s.FetchedAt = t }
}

// NewSnapshot builds a snapshot for the given plan.
func NewSnapshot(plan PlanLabel, opts ...SnapshotOption) *Snapshot {
	s := &Snapshot{
		Plan:       plan,
		quantities: make(map[string]Limit),
		flags:      make(map[string]bool),
		usage:      make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuantityLimit returns the cap stored under a limit field.
func (s *Snapshot) QuantityLimit(field string) (Limit, bool) {
	if s == nil {
		return Limit{}, false
	}
	l, ok := s.quantities[field]
	return l, ok
}

// Flag returns the feature flag stored under a limit field.
func (s *Snapshot) Flag(field string) (bool, bool) {
	if s == nil {
		return false, false
	}
	v, ok := s.flags[field]
	return v, ok
}

// Usage returns the usage count stored under a usage field.
func (s *Snapshot) Usage(field string) (int64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.usage[field]
	return v, ok
}

// Age returns how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	if s == nil || s.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(s.FetchedAt)
}

// Clone returns a deep copy. Callers that need a mutable variant use this.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{
		Plan:       s.Plan,
		BusinessID: s.BusinessID,
		FetchedAt:  s.FetchedAt,
		quantities: maps.Clone(s.quantities),
		flags:      maps.Clone(s.flags),
		usage:      maps.Clone(s.usage),
	}
}

// StatusPayload is the wire shape of the plan status endpoint:
//
//	{"plan": "free", "limits": {"clients": 10, "csv_export": false, ...}, "usage": {"clients": 3, ...}}
//
// Limit values are numbers (cap), null (unlimited) or booleans (feature flags).
type StatusPayload struct {
	Plan   PlanLabel        `json:"plan"`
	Limits map[string]any   `json:"limits"`
	Usage  map[string]int64 `json:"usage"`
}

// Payload converts the snapshot back to its wire shape.
func (s *Snapshot) Payload() StatusPayload {
	if s == nil {
		return StatusPayload{Plan: PlanFree, Limits: map[string]any{}, Usage: map[string]int64{}}
	}
	p := StatusPayload{
		Plan:   s.Plan,
		Limits: make(map[string]any, len(s.quantities)+len(s.flags)),
		Usage:  maps.Clone(s.usage),
	}
	for field, l := range s.quantities {
		p.Limits[field] = l
	}
	for field, v := range s.flags {
		p.Limits[field] = v
	}
	if p.Usage == nil {
		p.Usage = make(map[string]int64)
	}
	return p
}

type rawStatus struct {
	Plan   PlanLabel                  `json:"plan"`
	Limits map[string]json.RawMessage `json:"limits"`
	Usage  map[string]json.Number     `json:"usage"`
}

// DecodeStatus parses a plan status response body into a Snapshot.
// Fields outside the recognized set are kept so they never break decoding.
func DecodeStatus(r io.Reader, businessID string, fetchedAt time.Time) (*Snapshot, error) {
	var raw rawStatus
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Join(ErrInvalidStatus, err)
	}

	snap := NewSnapshot(raw.Plan, WithBusinessID(businessID), WithFetchedAt(fetchedAt))
	for field, value := range raw.Limits {
		if err := snap.setRawLimit(field, value); err != nil {
			return nil, errors.Join(ErrInvalidStatus, fmt.Errorf("limits.%s: %w", field, err))
		}
	}
	for field, value := range raw.Usage {
		n, err := parseCount(value)
		if err != nil {
			return nil, errors.Join(ErrInvalidStatus, ErrInvalidUsage, fmt.Errorf("usage.%s: %w", field, err))
		}
		snap.usage[field] = n
	}
	return snap, nil
}

func (s *Snapshot) setRawLimit(field string, value json.RawMessage) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch typed := v.(type) {
	case bool:
		s.flags[field] = typed
	case nil:
		// null on a feature field carries no information; leave it absent.
		if !isFeatureField(field) {
			s.quantities[field] = Unlimited
		}
	case json.Number:
		n, err := parseCount(typed)
		if err != nil {
			return errors.Join(ErrInvalidLimit, err)
		}
		s.quantities[field] = Cap(n)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidLimit, v)
	}
	return nil
}
