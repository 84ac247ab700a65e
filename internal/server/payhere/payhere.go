// Package payhere implements the PayHere gateway's MD5 request signing and
// notify-webhook signature verification.
package payhere

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/anypart/marketplace/internal/common"
)

// Gateway status codes reported in the notify callback.
const (
	StatusCodeSuccess     = 2
	StatusCodePending     = 0
	StatusCodeCanceled    = -1
	StatusCodeFailed      = -2
	StatusCodeChargedBack = -3
)

// Checkout and sandbox endpoints.
const (
	CheckoutURL        = "https://www.payhere.lk/pay/checkout"
	SandboxCheckoutURL = "https://sandbox.payhere.lk/pay/checkout"
)

// Signer signs checkout requests and verifies notify callbacks for one
// merchant account.
type Signer struct {
	merchantID string
	secret     string
}

func NewSigner(merchantID, secret string) *Signer {
	return &Signer{merchantID: merchantID, secret: secret}
}

// MerchantID returns the merchant account id the signer was built for.
func (s *Signer) MerchantID() string { return s.merchantID }

// FormatAmount renders cents the way the gateway hashes them: two decimal
// places, no grouping.
func FormatAmount(amountCents int64) string {
	return fmt.Sprintf("%d.%02d", amountCents/100, amountCents%100)
}

// CheckoutHash computes the hash field for a checkout request:
//
//	UPPER(MD5(merchant_id + order_id + amount + currency + UPPER(MD5(secret))))
func (s *Signer) CheckoutHash(orderID, amount, currency string) string {
	return upperMD5(s.merchantID + orderID + amount + currency + upperMD5(s.secret))
}

// VerifyNotify checks the md5sig of a notify callback. The signature covers
// the merchant id, order id, the amount and currency echoed by the gateway,
// and the status code. A mismatch yields common.ErrInvalidSignature.
func (s *Signer) VerifyNotify(merchantID, orderID, payhereAmount, payhereCurrency string, statusCode int, md5sig string) error {
	if merchantID != s.merchantID {
		return common.ErrInvalidSignature
	}
	local := upperMD5(merchantID + orderID + payhereAmount + payhereCurrency +
		fmt.Sprintf("%d", statusCode) + upperMD5(s.secret))
	if !strings.EqualFold(local, md5sig) {
		return common.ErrInvalidSignature
	}
	return nil
}

func upperMD5(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
