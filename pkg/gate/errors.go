package gate

import "errors"

var (
	// ErrInvalidTransition is returned when a state change is not allowed from the current state.
	ErrInvalidTransition = errors.New("gate: invalid state transition")

	// ErrActionInProgress is returned when an attempt is started while another one is running.
	ErrActionInProgress = errors.New("gate: action already in progress")

	// ErrInvalidAction is returned for actions without a mutation or with an unknown target.
	ErrInvalidAction = errors.New("gate: invalid action")
)
