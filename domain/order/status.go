package order

// Status is the fulfilment state of an order.
type Status string

const (
	StatusNew       Status = "new"
	StatusPaid      Status = "paid"
	StatusAssembly  Status = "assembly"
	StatusReady     Status = "ready"
	StatusShipping  Status = "shipping"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// progression is the forward fulfilment path. Cancelled sits outside it.
var progression = map[Status]int{
	StatusNew:       0,
	StatusPaid:      1,
	StatusAssembly:  2,
	StatusReady:     3,
	StatusShipping:  4,
	StatusCompleted: 5,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := progression[s]
	return ok || s == StatusCancelled
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HoldsStock reports whether the order still has its stock reserved.
func (s Status) HoldsStock() bool {
	return s.Valid() && s != StatusCancelled
}

// CanTransitionTo reports whether an admin may move an order from s to next.
// Fulfilment steps may be skipped (cash on delivery never passes through
// paid) but never reversed.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() || !s.Valid() || !next.Valid() || s == next {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return progression[next] > progression[s]
}

// Statuses lists every status in fulfilment order.
func Statuses() []Status {
	return []Status{StatusNew, StatusPaid, StatusAssembly, StatusReady, StatusShipping, StatusCompleted, StatusCancelled}
}
