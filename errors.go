package bestfirst

import "errors"

var (
	// ErrInvalidCost is returned when a step cost, action cost or budget is
	// negative or NaN. The run is aborted.
	ErrInvalidCost = errors.New("invalid cost")

	// ErrEmptyFrontier is returned by a Pop on a frontier with no open nodes.
	ErrEmptyFrontier = errors.New("empty frontier")

	// ErrInvariantViolation signals an attempt to reopen a closed node.
	// The engine treats it as fatal.
	ErrInvariantViolation = errors.New("invariant violation")
)
