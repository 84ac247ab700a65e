// Package services contains server-side business logic. This file implements
// UnlockService, the contact-unlock transaction: spending one credit token
// buys a permanent grant to view a product's seller contact details.
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
	"github.com/anypart/marketplace/internal/server/repositories/repomanager"
	"github.com/sethvargo/go-retry"
)

// UnlockResult reports the outcome of an unlock attempt. Granted is true
// whenever the buyer holds the grant on return; AlreadyUnlocked marks the
// repeat and race cases, where the call consumed nothing.
type UnlockResult struct {
	Granted         bool
	AlreadyUnlocked bool
	GrantID         string
}

// UnlockService performs the credit-spend transaction. Uniqueness of the
// (buyer, product) grant is enforced by the database, so two concurrent
// unlocks of the same pair cannot both consume a token: the loser's insert
// fails and is resolved as an already-unlocked success.
type UnlockService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	logger        logging.Logger
	enforceExpiry bool
}

// NewUnlockService constructs an UnlockService using repositories and server config.
func NewUnlockService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UnlockService {
	return &UnlockService{
		db:            db,
		repomanager:   m,
		logger:        logger,
		enforceExpiry: cfg.EnforceCreditExpiry,
	}
}

// retryBackoff is a seam for tests to shorten the transient-retry delay.
var retryBackoff = func() retry.Backoff {
	return retry.WithMaxRetries(1, retry.NewConstant(100*time.Millisecond))
}

// Unlock spends one of buyerID's credit tokens on productID. It is
// idempotent per (buyer, product): unlocking an already-unlocked product
// returns AlreadyUnlocked without touching the ledger. A buyer with no
// spendable tokens gets common.ErrInsufficientCredits; a transient storage
// fault is retried once and then surfaces as common.ErrUnlockFailed.
func (s *UnlockService) Unlock(ctx context.Context, buyerID, productID string) (*UnlockResult, error) {
	grantsRepo := s.repomanager.Grants(s.db)

	if grant, err := grantsRepo.Find(ctx, buyerID, productID); err == nil {
		return &UnlockResult{Granted: true, AlreadyUnlocked: true, GrantID: grant.ID}, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking existing grant: %w", err)
	}

	if _, err := s.repomanager.Products(s.db).GetView(ctx, productID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading product: %w", err)
	}

	var result *UnlockResult
	err := retry.Do(ctx, retryBackoff(), func(ctx context.Context) error {
		res, err := s.consume(ctx, buyerID, productID)
		if err != nil {
			if dbx.IsTransient(err) {
				s.logger.Warn(ctx, "transient fault during unlock, retrying",
					"buyer_id", buyerID, "product_id", productID, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrInsufficientCredits) {
			// The last token may be locked by a concurrent unlock of this
			// same pair; if that winner left a grant behind, this call is
			// a repeat, not a failure.
			if grant, ferr := grantsRepo.Find(ctx, buyerID, productID); ferr == nil {
				return &UnlockResult{Granted: true, AlreadyUnlocked: true, GrantID: grant.ID}, nil
			}
			return nil, common.ErrInsufficientCredits
		}
		// A concurrent unlock of the same pair won the insert race.
		if errors.Is(err, common.ErrAlreadyExists) {
			grant, ferr := grantsRepo.Find(ctx, buyerID, productID)
			if ferr != nil {
				return nil, fmt.Errorf("error resolving concurrent grant: %w", ferr)
			}
			return &UnlockResult{Granted: true, AlreadyUnlocked: true, GrantID: grant.ID}, nil
		}
		s.logger.Error(ctx, "unlock failed", "buyer_id", buyerID, "product_id", productID, "error", err)
		return nil, common.ErrUnlockFailed
	}
	return result, nil
}

// consume runs one atomic attempt: lock a spendable token, insert the grant,
// flip the token to used. Any error rolls the whole attempt back.
func (s *UnlockService) consume(ctx context.Context, buyerID, productID string) (*UnlockResult, error) {
	var result *UnlockResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tokensTx := s.repomanager.CreditTokens(tx)
		grantsTx := s.repomanager.Grants(tx)

		token, err := tokensTx.SelectForConsume(ctx, buyerID, s.enforceExpiry, time.Now())
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInsufficientCredits
			}
			return fmt.Errorf("error selecting token: %w", err)
		}

		s.logger.Debug(ctx, "consuming credit token",
			"buyer_id", buyerID, "product_id", productID, "token_id", token.ID)

		grant, err := grantsTx.Create(ctx, &models.Grant{
			BuyerID:       buyerID,
			ProductID:     productID,
			CreditTokenID: token.ID,
		})
		if err != nil {
			return err
		}

		if err := tokensTx.MarkUsed(ctx, token.ID, grant.ID); err != nil {
			return fmt.Errorf("error consuming token %s: %w", token.ID, err)
		}

		result = &UnlockResult{Granted: true, GrantID: grant.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
