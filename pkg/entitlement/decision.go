package entitlement

import "encoding/json"

// Decision is the result of a quantity check.
// Invariant: Allowed == Limit.IsUnlimited() || Current < limit.
type Decision struct {
	Allowed bool
	Limit   Limit
	Current int64

	remaining    int64
	hasRemaining bool
}

// permissive is returned whenever there is nothing to restrict on.
func permissive() Decision {
	return Decision{Allowed: true, Limit: Unlimited}
}

func decide(l Limit, current int64) Decision {
	d := Decision{
		Allowed: l.Allows(current),
		Limit:   l,
		Current: current,
	}
	if capValue, ok := l.Value(); ok {
		d.remaining = capValue - current
		d.hasRemaining = true
	}
	return d
}

// Remaining returns limit - current; the second value is false when unlimited.
// The difference can be negative when usage already exceeds the cap.
func (d Decision) Remaining() (int64, bool) {
	return d.remaining, d.hasRemaining
}

func (d Decision) MarshalJSON() ([]byte, error) {
	out := struct {
		Allowed   bool   `json:"allowed"`
		Limit     Limit  `json:"limit"`
		Current   int64  `json:"current"`
		Remaining *int64 `json:"remaining,omitempty"`
	}{
		Allowed: d.Allowed,
		Limit:   d.Limit,
		Current: d.Current,
	}
	if d.hasRemaining {
		r := d.remaining
		out.Remaining = &r
	}
	return json.Marshal(out)
}
