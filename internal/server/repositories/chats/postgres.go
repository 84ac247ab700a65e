// Package chats provides the PostgreSQL-backed chat store.
package chats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/dbx"
	"github.com/anypart/marketplace/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreateConversation(ctx context.Context, buyerID, sellerID, productID string) (*models.Conversation, error) {
	// ON CONFLICT DO NOTHING returns no row for an existing thread, so fall
	// back to a plain select.
	query := `
		INSERT INTO conversations (buyer_id, seller_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (buyer_id, seller_id, product_id) DO NOTHING
		RETURNING id, buyer_id, seller_id, product_id, created_at
	`
	conv := &models.Conversation{}
	err := r.db.QueryRowContext(ctx, query, buyerID, sellerID, productID).
		Scan(&conv.ID, &conv.BuyerID, &conv.SellerID, &conv.ProductID, &conv.CreatedAt)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	query = `
		SELECT id, buyer_id, seller_id, product_id, created_at
		FROM conversations
		WHERE buyer_id = $1 AND seller_id = $2 AND product_id = $3
	`
	err = r.db.QueryRowContext(ctx, query, buyerID, sellerID, productID).
		Scan(&conv.ID, &conv.BuyerID, &conv.SellerID, &conv.ProductID, &conv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return conv, nil
}

func (r *PostgresRepository) listConversations(ctx context.Context, query, id string) ([]*models.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Conversation
	for rows.Next() {
		conv := &models.Conversation{}
		if err := rows.Scan(&conv.ID, &conv.BuyerID, &conv.SellerID, &conv.ProductID, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListConversationsForBuyer(ctx context.Context, buyerID string) ([]*models.Conversation, error) {
	query := `
		SELECT id, buyer_id, seller_id, product_id, created_at
		FROM conversations
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`
	return r.listConversations(ctx, query, buyerID)
}

func (r *PostgresRepository) ListConversationsForSeller(ctx context.Context, sellerID string) ([]*models.Conversation, error) {
	query := `
		SELECT id, buyer_id, seller_id, product_id, created_at
		FROM conversations
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`
	return r.listConversations(ctx, query, sellerID)
}

func (r *PostgresRepository) AddMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_kind, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, message.ConversationID, message.SenderKind, message.Body).
		Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return message, nil
}

func (r *PostgresRepository) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_kind, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		message := &models.Message{}
		if err := rows.Scan(&message.ID, &message.ConversationID, &message.SenderKind, &message.Body, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
