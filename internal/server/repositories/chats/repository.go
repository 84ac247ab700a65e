package chats

import (
	"context"

	"github.com/anypart/marketplace/internal/server/models"
)

// Repository stores chat threads and messages. Delivery mechanics (push,
// read receipts) are out of scope; this is the storage shape only.
type Repository interface {
	// GetOrCreateConversation returns the thread for (buyer, seller,
	// product), creating it on first contact.
	GetOrCreateConversation(ctx context.Context, buyerID, sellerID, productID string) (*models.Conversation, error)

	// ListConversationsForBuyer / ListConversationsForSeller return the
	// principal's threads, newest first.
	ListConversationsForBuyer(ctx context.Context, buyerID string) ([]*models.Conversation, error)
	ListConversationsForSeller(ctx context.Context, sellerID string) ([]*models.Conversation, error)

	// AddMessage appends a message to a thread.
	AddMessage(ctx context.Context, message *models.Message) (*models.Message, error)

	// ListMessages returns a thread's messages, oldest first.
	ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
}
