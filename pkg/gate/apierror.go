package gate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Machine-readable rejection codes sent by the entitlement service.
const (
	CodePlanLimit       = "plan_limit"
	CodeUpgradeRequired = "upgrade_required"
	CodeFeatureLocked   = "feature_locked"
)

// APIError is a rejected mutation as reported by the API.
//
// Typical plan limit payload:
//
//	{"code": "plan_limit", "detail": "...", "limit": 10, "current": 10, "upgrade_required": true}
type APIError struct {
	Status          int
	Code            string
	Detail          string
	Message         string // the "error" field
	Limit           *int64
	Current         *int64
	UpgradeRequired bool
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
	default:
		return fmt.Sprintf("api error %d", e.Status)
	}
}

// UserMessage returns the text meant for the user, or "" when the payload had none.
func (e *APIError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// ParseAPIError decodes an error response body. It accepts DRF conventions:
// values wrapped in single-element lists, a "detail" that is itself an
// object, and "non_field_errors". Bodies that are not JSON objects yield an
// APIError with only Status set.
func ParseAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return e
	}
	e.fill(raw)

	if e.Detail == "" && e.Message == "" {
		if v, ok := raw["non_field_errors"]; ok {
			e.Detail, _ = asString(v)
		}
	}
	return e
}

// fill copies fields from raw that are still empty on e.
func (e *APIError) fill(raw map[string]json.RawMessage) {
	if e.Code == "" {
		if v, ok := raw["code"]; ok {
			e.Code, _ = asString(v)
		}
	}
	if v, ok := raw["detail"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(unwrapList(v), &nested); err == nil {
			e.fill(nested)
		} else if e.Detail == "" {
			e.Detail, _ = asString(v)
		}
	}
	if e.Message == "" {
		if v, ok := raw["error"]; ok {
			e.Message, _ = asString(v)
		}
	}
	if e.Limit == nil {
		if v, ok := raw["limit"]; ok {
			e.Limit = asInt(v)
		}
	}
	if e.Current == nil {
		if v, ok := raw["current"]; ok {
			e.Current = asInt(v)
		}
	}
	if !e.UpgradeRequired {
		if v, ok := raw["upgrade_required"]; ok {
			e.UpgradeRequired = asBool(v)
		}
	}
}

// unwrapList returns the first element of a JSON array, or v unchanged.
func unwrapList(v json.RawMessage) json.RawMessage {
	var list []json.RawMessage
	if err := json.Unmarshal(v, &list); err == nil {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func asString(v json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(unwrapList(v), &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func asInt(v json.RawMessage) *int64 {
	v = unwrapList(v)
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var anyVal any
	if err := dec.Decode(&anyVal); err != nil {
		return nil
	}
	switch t := anyVal.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		return nil
	}
	if i, err := n.Int64(); err == nil {
		return &i
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil
	}
	i := int64(f)
	return &i
}

func asBool(v json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(unwrapList(v), &b); err == nil {
		return b
	}
	s, ok := asString(v)
	return ok && strings.EqualFold(s, "true")
}
