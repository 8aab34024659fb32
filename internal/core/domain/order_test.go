package domain

import "testing"

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPending, StatusOutForDelivery, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusPreparing, StatusOutForDelivery, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusPreparing, StatusPending, false},
		{StatusPreparing, StatusDelivered, false},
		{StatusOutForDelivery, StatusDelivered, true},
		{StatusOutForDelivery, StatusCancelled, true},
		{StatusOutForDelivery, StatusPreparing, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusDelivered, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestOrderStatus_Cancellable(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusPreparing, StatusOutForDelivery} {
		if !s.Cancellable() {
			t.Errorf("%s should be cancellable", s)
		}
	}
	for _, s := range []OrderStatus{StatusDelivered, StatusCancelled} {
		if s.Cancellable() {
			t.Errorf("%s is terminal and must not be cancellable", s)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleCustomer, RoleCourier, RoleAdmin} {
		if !ValidRole(r) {
			t.Errorf("%s should be valid", r)
		}
	}
	for _, r := range []string{"", "admin", "superuser", "Customer"} {
		if ValidRole(r) {
			t.Errorf("%q should be invalid", r)
		}
	}
}
