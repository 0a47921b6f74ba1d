package ordersvc

import (
	"testing"

	"clothesrental/model"
)

func TestTransitionTable(t *testing.T) {
	type move struct {
		from, to model.OrderStatus
		ok       bool
	}
	cases := []move{
		{model.OrderPending, model.OrderApproved, true},
		{model.OrderPending, model.OrderRejected, true},
		{model.OrderPending, model.OrderCancelled, true},
		{model.OrderPending, model.OrderCompleted, false},
		{model.OrderPendingPayment, model.OrderApproved, true},
		{model.OrderPendingPayment, model.OrderRejected, true},
		{model.OrderPendingPayment, model.OrderCompleted, false},
		{model.OrderApproved, model.OrderCompleted, true},
		{model.OrderApproved, model.OrderRejected, false},
		{model.OrderApproved, model.OrderCancelled, false},
		{model.OrderApproved, model.OrderApproved, false},
	}
	for _, c := range cases {
		if got := canTransition(c.from, c.to); got != c.ok {
			t.Fatalf("canTransition(%s, %s) = %v; want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestTerminalStatesPermitNothing(t *testing.T) {
	terminals := []model.OrderStatus{model.OrderCompleted, model.OrderRejected, model.OrderCancelled}
	all := []model.OrderStatus{
		model.OrderPending, model.OrderPendingPayment, model.OrderApproved,
		model.OrderCompleted, model.OrderRejected, model.OrderCancelled,
	}
	for _, from := range terminals {
		if !from.Terminal() {
			t.Fatalf("%s should report Terminal()", from)
		}
		for _, to := range all {
			if canTransition(from, to) {
				t.Fatalf("terminal %s must not transition to %s", from, to)
			}
		}
	}
}
