package domain

// PaymentStatus is an invoice's payment state.
type PaymentStatus string

const (
	StatusOpen          PaymentStatus = "OPEN"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	StatusPaid          PaymentStatus = "PAID"
	StatusOverdue       PaymentStatus = "OVERDUE"
	StatusCancelled     PaymentStatus = "CANCELLED"
	StatusRefunded      PaymentStatus = "REFUNDED"
)

// ValidPaymentStatus reports whether s is a known status tag.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case StatusOpen, StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// MarkPaid is the single guarded transition: an invoice can only be closed
// out while it is still open. Every other status change is an administrative
// assignment outside this guard's authority.
func MarkPaid(current PaymentStatus) (PaymentStatus, error) {
	if current != StatusOpen {
		return current, ErrNotOpen
	}
	return StatusPaid, nil
}
