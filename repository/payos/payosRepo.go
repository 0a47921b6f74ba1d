package payosrepo

import "context"

type CreateCheckoutReq struct {
	OrderCode   string
	Amount      int64
	Description string // carries the order code; the provider echoes it back
	ItemName    string
	ExpirySec   int
}

type CreateCheckoutResp struct {
	CheckoutURL string
	ExpiresAt   string
}

// WebhookEvent is the payload the provider POSTs back. Delivery is
// at-least-once; the reconciliation service must absorb duplicates.
type WebhookEvent struct {
	OrderCode   string `json:"orderCode"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// Provider payment statuses.
const (
	StatusPaid      = "PAID"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
	StatusPending   = "PENDING"
)

type Repo interface {
	CreateCheckout(ctx context.Context, req CreateCheckoutReq) (*CreateCheckoutResp, error)
	GetPaymentStatus(ctx context.Context, orderCode string) (string, error)
	VerifyWebhookSignature(sigHeader string, rawBody []byte) error
}
