package ordersvc

import "clothesrental/model"

// allowedTransitions is the single authority on order-status movement.
// PENDING and PENDING_PAYMENT may be approved, rejected or cancelled;
// APPROVED may only complete; terminal states permit nothing.
var allowedTransitions = map[model.OrderStatus]map[model.OrderStatus]bool{
	model.OrderPending: {
		model.OrderApproved:  true,
		model.OrderRejected:  true,
		model.OrderCancelled: true,
	},
	model.OrderPendingPayment: {
		model.OrderApproved:  true,
		model.OrderRejected:  true,
		model.OrderCancelled: true,
	},
	model.OrderApproved: {
		model.OrderCompleted: true,
	},
	model.OrderCompleted: {},
	model.OrderRejected:  {},
	model.OrderCancelled: {},
}

func canTransition(from, to model.OrderStatus) bool {
	return allowedTransitions[from][to]
}
