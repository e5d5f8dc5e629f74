package domain

import "fmt"

// Status is the order's position in the fulfillment lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDispatch  Status = "dispatch"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPreparing, StatusReady, StatusDispatch,
		StatusDelivered, StatusCancelled, StatusRejected:
		return Status(s), nil
	}
	return "", &InvalidInputError{Reason: fmt.Sprintf("unknown status %q", s)}
}

// Allowed transitions. Terminal statuses have an empty set; rejection is
// only possible before the restaurant accepts, never after dispatch.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusPreparing: true, StatusCancelled: true, StatusRejected: true},
	StatusPreparing: {StatusReady: true, StatusCancelled: true},
	StatusReady:     {StatusDispatch: true, StatusCancelled: true},
	StatusDispatch:  {StatusDelivered: true},
	StatusDelivered: {},
	StatusCancelled: {},
	StatusRejected:  {},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func (s Status) CanTransition(to Status) bool {
	next := allowedTransitions[s]
	return next != nil && next[to]
}

// Transition validates and applies a status change. On success it returns
// the new status; otherwise an IllegalTransitionError carrying both sides.
func Transition(from, to Status) (Status, error) {
	if !from.CanTransition(to) {
		return from, &IllegalTransitionError{From: from, To: to}
	}
	return to, nil
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Active statuses feed live operational views; everything else is history.
// The two sets partition the full status space.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady:
		return true
	}
	return false
}

func (s Status) History() bool {
	switch s {
	case StatusDispatch, StatusDelivered, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// ActiveStatuses is the filter set for live views, in lifecycle order.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusPreparing, StatusReady}
}

// HistoryStatuses is the filter set for archival views.
func HistoryStatuses() []Status {
	return []Status{StatusDispatch, StatusDelivered, StatusCancelled, StatusRejected}
}
