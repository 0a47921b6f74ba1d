// model/order.go
package model

import "time"

type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"         // cash order awaiting manual approval
	OrderPendingPayment OrderStatus = "PENDING_PAYMENT" // transfer order awaiting payment confirmation
	OrderApproved       OrderStatus = "APPROVED"        // confirmed, item is held
	OrderCompleted      OrderStatus = "COMPLETED"       // item returned
	OrderRejected       OrderStatus = "REJECTED"        // declined or expired
	OrderCancelled      OrderStatus = "CANCELLED"       // aborted pre-approval
)

type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayTransfer PaymentMethod = "transfer"
)

type Order struct {
	ID            int64         `json:"id"`
	Code          string        `json:"code"`
	UserID        int64         `json:"user_id"`
	ItemID        int64         `json:"item_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	RentDate      time.Time     `json:"rent_date"`
	ReturnDate    time.Time     `json:"return_date"`
	TotalAmount   int64         `json:"total_amount"` // VND, fixed at creation
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        OrderStatus   `json:"status"`
	IdentityDoc   *string       `json:"identity_doc,omitempty"`
	PickupTime    *time.Time    `json:"pickup_time,omitempty"`
	PaymentLink   *string       `json:"payment_link,omitempty"`
	HoldExpiresAt time.Time     `json:"hold_expires_at"`
	CreatedAt     time.Time     `json:"created_at"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	RejectedAt    *time.Time    `json:"rejected_at,omitempty"`
}

// Terminal reports whether no further transition is permitted out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderRejected || s == OrderCancelled
}

type Feedback struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	Rating      int       `json:"rating"`
	Message     string    `json:"message"`
	Images      []string  `json:"images,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// HeldRange is a booked date span for one item, used to block calendar dates.
type HeldRange struct {
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Status OrderStatus `json:"status"`
}
