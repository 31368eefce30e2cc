package order

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition follows pending → processing → shipped → delivered, with
// cancelled reachable from any non-terminal state. Setting the current
// status again is a no-op, not a violation.
func (s Status) CanTransition(to Status) bool {
	if s == to {
		return true
	}
	if to == StatusCancelled {
		return !s.Terminal()
	}
	switch s {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusShipped
	case StatusShipped:
		return to == StatusDelivered
	}
	return false
}

func (s Status) String() string { return string(s) }

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// CanTransition follows pending → paid | failed and paid → refunded.
func (p PaymentStatus) CanTransition(to PaymentStatus) bool {
	if p == to {
		return true
	}
	switch p {
	case PaymentPending:
		return to == PaymentPaid || to == PaymentFailed
	case PaymentPaid:
		return to == PaymentRefunded
	}
	return false
}

func (p PaymentStatus) String() string { return string(p) }
