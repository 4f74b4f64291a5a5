package gate

import (
	"errors"
	"strings"
)

// ErrorKind is how a failed mutation is presented.
type ErrorKind int

const (
	// KindGeneric errors are shown as an error message the user can act on.
	KindGeneric ErrorKind = iota
	// KindLimitExceeded errors become a quantity upgrade prompt.
	KindLimitExceeded
	// KindFeatureLocked errors become a feature upgrade prompt.
	KindFeatureLocked
)

func (k ErrorKind) String() string {
	switch k {
	case KindLimitExceeded:
		return "limit_exceeded"
	case KindFeatureLocked:
		return "feature_locked"
	default:
		return "generic"
	}
}

// ClassifyError decides whether err is a plan denial. The machine-readable
// code wins; the word "limit" in detail or error text is only consulted when
// the payload carries no code at all. Errors that are not *APIError are generic.
func ClassifyError(err error) ErrorKind {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return KindGeneric
	}

	switch strings.ToLower(apiErr.Code) {
	case CodePlanLimit:
		return KindLimitExceeded
	case CodeUpgradeRequired, CodeFeatureLocked:
		if apiErr.Limit != nil {
			return KindLimitExceeded
		}
		return KindFeatureLocked
	case "":
	default:
		return KindGeneric
	}

	if apiErr.UpgradeRequired {
		if apiErr.Limit != nil {
			return KindLimitExceeded
		}
		return KindFeatureLocked
	}
	if containsLimit(apiErr.Detail) || containsLimit(apiErr.Message) {
		return KindLimitExceeded
	}
	return KindGeneric
}

func containsLimit(s string) bool {
	return strings.Contains(strings.ToLower(s), "limit")
}
