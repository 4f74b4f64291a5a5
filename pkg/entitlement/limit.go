package entitlement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Limit is a resource cap. It is either a non-negative count or Unlimited.
// The zero value is a cap of 0 (no access), which is never the same as Unlimited.
type Limit struct {
	value     int64
	unlimited bool
}

// Unlimited is the limit with no cap. It is encoded as JSON null.
var Unlimited = Limit{unlimited: true}

// Cap returns a limit of n units. Negative values are clamped to 0.
func Cap(n int64) Limit {
	return Limit{value: max(n, 0)}
}

// IsUnlimited reports whether the limit has no cap.
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Value returns the numeric cap and false for Unlimited.
func (l Limit) Value() (int64, bool) {
	if l.unlimited {
		return 0, false
	}
	return l.value, true
}

// Allows reports whether one more unit may be created when current units exist.
func (l Limit) Allows(current int64) bool {
	return l.unlimited || current < l.value
}

func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return strconv.FormatInt(l.value, 10)
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if l.unlimited {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(l.value, 10)), nil
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = Unlimited
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Join(ErrInvalidLimit, err)
	}
	parsed, err := parseCount(n)
	if err != nil {
		return errors.Join(ErrInvalidLimit, err)
	}
	*l = Cap(parsed)
	return nil
}

// parseCount accepts integral, non-negative JSON numbers ("3" and "3.0").
func parseCount(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative value %d", v)
		}
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(int64(f)) {
		return 0, fmt.Errorf("not a non-negative integer: %s", n)
	}
	return int64(f), nil
}
