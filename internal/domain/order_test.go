package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want OrderStatus
	}{
		{"Pending", OrderStatusPending},
		{"pending", OrderStatusPending},
		{"PENDING", OrderStatusPending},
		{"Completed", OrderStatusCompleted},
		{"completed", OrderStatusCompleted},
		{"Cancelled", OrderStatusCancelled},
		{"cAnCeLLeD", OrderStatusCancelled},
	}

	for _, tc := range cases {
		got, err := ParseOrderStatus(tc.raw)
		if err != nil {
			t.Fatalf("ParseOrderStatus(%q) failed: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseOrderStatus(%q): got=%s want=%s", tc.raw, got, tc.want)
		}
	}
}

func TestParseOrderStatus_Unknown(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "Shipped", "Pending ", "Complete"} {
		if _, err := ParseOrderStatus(raw); !errors.Is(err, ErrUnknownOrderStatus) {
			t.Fatalf("ParseOrderStatus(%q): expected ErrUnknownOrderStatus, got %v", raw, err)
		}
	}
}

func TestOrderStatus_Equals(t *testing.T) {
	t.Parallel()

	if !OrderStatusCancelled.Equals("cancelled") {
		t.Fatal("expected case-insensitive equality")
	}
	if OrderStatusCancelled.Equals(OrderStatusPending) {
		t.Fatal("distinct statuses must not be equal")
	}
}

func TestOrder_ValidateInvariants(t *testing.T) {
	t.Parallel()

	valid := Order{
		UserID:     "u1",
		Items:      []OrderItem{{ProductID: "p1", Quantity: 1}},
		TotalPrice: decimal.RequireFromString("9.99"),
	}
	if errs := valid.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}

	broken := Order{
		Items:      []OrderItem{{ProductID: "", Quantity: 0}},
		TotalPrice: decimal.RequireFromString("-1"),
	}
	joined := errors.Join(broken.ValidateInvariants()...)
	for _, want := range []error{
		ErrUserRequired,
		ErrItemQuantityInvalid,
		ErrItemProductRequired,
		ErrTotalPriceNegative,
	} {
		if !errors.Is(joined, want) {
			t.Fatalf("expected violation %v in %v", want, joined)
		}
	}
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	price, err := ParsePrice("129.90")
	if err != nil {
		t.Fatalf("ParsePrice failed: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("129.90")) {
		t.Fatalf("unexpected price: %s", price)
	}

	for _, raw := range []string{"", "abc", "12,50"} {
		if _, err := ParsePrice(raw); !errors.Is(err, ErrProductPriceInvalid) {
			t.Fatalf("ParsePrice(%q): expected ErrProductPriceInvalid, got %v", raw, err)
		}
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	if !IsBadRequest(ErrInsufficientStock) {
		t.Fatal("insufficient stock must classify as bad request")
	}
	if !IsNotFound(ErrOrderNotFound) {
		t.Fatal("missing order must classify as not found")
	}
	if !IsConflict(ErrEmailTaken) {
		t.Fatal("taken email must classify as conflict")
	}
	if IsBadRequest(ErrOrderNotFound) || IsNotFound(ErrInsufficientStock) {
		t.Fatal("classifications must not overlap")
	}

	wrapped := errors.Join(errors.New("context"), ErrUnknownProduct)
	if !IsBadRequest(wrapped) {
		t.Fatal("classification must unwrap joined errors")
	}
}
