package enums

import "strings"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func NormalizePaymentStatus(raw string) PaymentStatus {
	return PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Settled reports whether the status grants access.
func (s PaymentStatus) Settled() bool {
	switch NormalizePaymentStatus(string(s)) {
	case PaymentStatusPaid, PaymentStatusCompleted:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusCompleted,
		PaymentStatusCancelled, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}
