package enums

import "testing"

func TestParseProductType(t *testing.T) {
	cases := map[string]ProductType{
		"file":        ProductTypeFile,
		" Course ":    ProductTypeCourse,
		"LESSON_PLAN": ProductTypeLessonPlan,
		"bundle":      ProductTypeBundle,
	}
	for raw, want := range cases {
		got, ok := ParseProductType(raw)
		if !ok || got != want {
			t.Fatalf("ParseProductType(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}

	if _, ok := ParseProductType("subscription"); ok {
		t.Fatalf("unknown product type must be rejected")
	}
}

func TestPaymentStatusSettled(t *testing.T) {
	for _, s := range []PaymentStatus{"paid", "Completed", " completed "} {
		if !s.Settled() {
			t.Fatalf("%q must be settled", s)
		}
	}
	for _, s := range []PaymentStatus{PaymentStatusPending, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded, ""} {
		if s.Settled() {
			t.Fatalf("%q must not be settled", s)
		}
	}
}

func TestPaymentStatusValid(t *testing.T) {
	if !NormalizePaymentStatus(" PENDING ").Valid() {
		t.Fatalf("normalized pending must be valid")
	}
	if PaymentStatus("unknown").Valid() {
		t.Fatalf("unknown status must be invalid")
	}
}
