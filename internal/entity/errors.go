package domain

import "fmt"

// NotFoundError reports a referenced entity that does not exist. Callers
// map it to a 404.
type NotFoundError struct {
	Kind string // e.g. "menu item", "order"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvalidInputError reports malformed or out-of-range caller input.
// Callers map it to a 400.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// IllegalTransitionError reports a status change the lifecycle does not
// allow. It carries both statuses so the caller can reconcile.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}
