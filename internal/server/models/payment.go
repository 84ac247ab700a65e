package models

import "time"

// Payment statuses as recorded from the gateway notify webhook.
const (
	PaymentPending = "PENDING"
	PaymentSuccess = "SUCCESS"
	PaymentFailed  = "FAILED"
)

// Payment is a credit-package purchase routed through the payment gateway.
// OrderRef is the gateway-visible order id; tokens are minted exactly once
// when the payment first reaches SUCCESS.
type Payment struct {
	ID            string
	OrderRef      string
	BuyerID       string
	PackageID     string
	AmountCents   int64
	Currency      string
	Status        string
	Method        string
	GatewayStatus int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
