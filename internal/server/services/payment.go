package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/dbx"
	"github.com/anypart/marketplace/internal/logging"
	"github.com/anypart/marketplace/internal/server/config"
	"github.com/anypart/marketplace/internal/server/models"
	"github.com/anypart/marketplace/internal/server/payhere"
	"github.com/anypart/marketplace/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CheckoutRequest is everything the client needs to POST the buyer to the
// payment gateway.
type CheckoutRequest struct {
	CheckoutURL string
	MerchantID  string
	OrderRef    string
	ItemName    string
	Amount      string
	Currency    string
	Hash        string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// NotifyParams is the subset of the gateway's notify callback the server
// cares about.
type NotifyParams struct {
	MerchantID      string
	OrderRef        string
	PayhereAmount   string
	PayhereCurrency string
	StatusCode      int
	MD5Sig          string
	Method          string
}

// PaymentService runs the credit-package purchase flow: it opens a PENDING
// payment before the buyer leaves for the gateway, and settles it from the
// notify webhook. Tokens are minted in the same transaction that flips the
// payment to SUCCESS, and the PENDING-only status guard makes replayed
// webhooks harmless.
type PaymentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	signer      *payhere.Signer
	logger      logging.Logger
	sandbox     bool
	baseURL     string
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *PaymentService {
	return &PaymentService{
		db:          db,
		repomanager: m,
		signer:      payhere.NewSigner(cfg.PayHereMerchantID, cfg.PayHereSecret),
		logger:      logger,
		sandbox:     cfg.PayHereSandbox,
		baseURL:     cfg.AppBaseURL,
	}
}

// ListPackages returns the purchasable credit packages.
func (s *PaymentService) ListPackages(ctx context.Context) ([]*models.CreditPackage, error) {
	pkgs, err := s.repomanager.Payments(s.db).ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing packages: %w", err)
	}
	return pkgs, nil
}

// ListPayments returns the buyer's purchase history, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, buyerID string) ([]*models.Payment, error) {
	items, err := s.repomanager.Payments(s.db).ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	return items, nil
}

// StartCheckout opens a PENDING payment for the package and returns the
// signed parameter set for the gateway redirect. An unknown package yields
// common.ErrNotFound.
func (s *PaymentService) StartCheckout(ctx context.Context, buyerID, packageID string) (*CheckoutRequest, error) {
	repo := s.repomanager.Payments(s.db)

	pkg, err := repo.GetPackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading package: %w", err)
	}

	orderRef := fmt.Sprintf("ORD-%s", uuid.New())
	if _, err := repo.CreatePending(ctx, &models.Payment{
		OrderRef:    orderRef,
		BuyerID:     buyerID,
		PackageID:   pkg.ID,
		AmountCents: pkg.PriceCents,
		Currency:    "LKR",
		Status:      models.PaymentPending,
	}); err != nil {
		return nil, fmt.Errorf("error creating payment: %w", err)
	}

	amount := payhere.FormatAmount(pkg.PriceCents)
	checkoutURL := payhere.CheckoutURL
	if s.sandbox {
		checkoutURL = payhere.SandboxCheckoutURL
	}
	return &CheckoutRequest{
		CheckoutURL: checkoutURL,
		MerchantID:  s.signer.MerchantID(),
		OrderRef:    orderRef,
		ItemName:    pkg.Name,
		Amount:      amount,
		Currency:    "LKR",
		Hash:        s.signer.CheckoutHash(orderRef, amount, "LKR"),
		ReturnURL:   s.baseURL + "/payments/return",
		CancelURL:   s.baseURL + "/payments/cancel",
		NotifyURL:   s.baseURL + "/api/payments/notify",
	}, nil
}

// HandleNotify settles a payment from the gateway webhook. The signature is
// verified before anything is touched. Only the terminal codes settle the
// row: on first SUCCESS the package's tokens are minted atomically with the
// status flip, a FAILED code marks the payment FAILED and mints nothing.
// Non-terminal codes (pending, canceled, chargeback) leave the row PENDING
// so the later terminal notify can still land. A replayed webhook finds the
// payment already settled and changes nothing.
func (s *PaymentService) HandleNotify(ctx context.Context, p NotifyParams) error {
	if err := s.signer.VerifyNotify(p.MerchantID, p.OrderRef, p.PayhereAmount, p.PayhereCurrency, p.StatusCode, p.MD5Sig); err != nil {
		s.logger.Warn(ctx, "rejected payment notify with bad signature", "order_ref", p.OrderRef)
		return common.ErrInvalidSignature
	}

	payment, err := s.repomanager.Payments(s.db).GetByOrderRef(ctx, p.OrderRef)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error loading payment: %w", err)
	}

	var status string
	switch p.StatusCode {
	case payhere.StatusCodeSuccess:
		status = models.PaymentSuccess
	case payhere.StatusCodeFailed:
		status = models.PaymentFailed
	default:
		s.logger.Info(ctx, "ignoring non-terminal payment notify",
			"order_ref", p.OrderRef, "status_code", p.StatusCode)
		return nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		paymentsTx := s.repomanager.Payments(tx)

		if err := paymentsTx.MarkStatus(ctx, p.OrderRef, status, p.Method, p.StatusCode); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// already settled by an earlier webhook delivery
				s.logger.Info(ctx, "ignoring repeated payment notify", "order_ref", p.OrderRef)
				return nil
			}
			return fmt.Errorf("error updating payment: %w", err)
		}

		if status != models.PaymentSuccess {
			return nil
		}

		pkg, err := paymentsTx.GetPackage(ctx, payment.PackageID)
		if err != nil {
			return fmt.Errorf("error loading package: %w", err)
		}
		var expiresAt *time.Time
		if pkg.ValidityDays > 0 {
			t := time.Now().AddDate(0, 0, pkg.ValidityDays)
			expiresAt = &t
		}
		ids, err := s.repomanager.CreditTokens(tx).Mint(ctx, payment.BuyerID, pkg.TokenCount, expiresAt, p.OrderRef)
		if err != nil {
			return fmt.Errorf("error minting tokens: %w", err)
		}
		s.logger.Info(ctx, "minted credit tokens for payment",
			"order_ref", p.OrderRef, "buyer_id", payment.BuyerID, "count", len(ids))
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}
