package entitlement

import "errors"

var (
	ErrInvalidStatus = errors.New("entitlement: invalid plan status payload")
	ErrInvalidLimit  = errors.New("entitlement: invalid limit value")
	ErrInvalidUsage  = errors.New("entitlement: invalid usage value")
)
