package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/server/models"
	"github.com/anypart/marketplace/internal/server/repositories/repomanager"
)

// ChatService lets buyers and sellers exchange messages about a product.
// A thread is keyed by (buyer, seller, product) and created lazily on the
// buyer's first message.
type ChatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewChatService(db *sql.DB, m repomanager.RepositoryManager) *ChatService {
	return &ChatService{db: db, repomanager: m}
}

// StartConversation opens (or returns) the thread between a buyer and the
// seller of the given product.
func (s *ChatService) StartConversation(ctx context.Context, buyerID, productID string) (*models.Conversation, error) {
	view, err := s.repomanager.Products(s.db).GetView(ctx, productID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading product: %w", err)
	}
	conv, err := s.repomanager.Chats(s.db).GetOrCreateConversation(ctx, buyerID, view.SellerID, productID)
	if err != nil {
		return nil, fmt.Errorf("error opening conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns the principal's threads, newest first.
func (s *ChatService) ListConversations(ctx context.Context, session *models.Session) ([]*models.Conversation, error) {
	repo := s.repomanager.Chats(s.db)
	switch session.Kind {
	case models.PrincipalBuyer:
		return repo.ListConversationsForBuyer(ctx, session.PrincipalID)
	case models.PrincipalSeller:
		return repo.ListConversationsForSeller(ctx, session.PrincipalID)
	}
	return nil, common.ErrUnauthenticated
}

// SendMessage appends a message to a thread on behalf of the session's
// principal. Only the thread's two participants may post to it.
func (s *ChatService) SendMessage(ctx context.Context, session *models.Session, conversationID, body string) (*models.Message, error) {
	repo := s.repomanager.Chats(s.db)

	_, ok, err := s.findConversation(ctx, session, conversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNotFound
	}

	msg, err := repo.AddMessage(ctx, &models.Message{
		ConversationID: conversationID,
		SenderKind:     session.Kind,
		Body:           body,
	})
	if err != nil {
		return nil, fmt.Errorf("error adding message: %w", err)
	}
	return msg, nil
}

// ListMessages returns a thread's messages, oldest first, after checking
// that the session's principal participates in the thread.
func (s *ChatService) ListMessages(ctx context.Context, session *models.Session, conversationID string) ([]*models.Message, error) {
	_, ok, err := s.findConversation(ctx, session, conversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNotFound
	}
	msgs, err := s.repomanager.Chats(s.db).ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return msgs, nil
}

// findConversation checks thread membership by scanning the principal's own
// threads, so a guessed conversation id belonging to someone else behaves
// like a missing one.
func (s *ChatService) findConversation(ctx context.Context, session *models.Session, conversationID string) (*models.Conversation, bool, error) {
	convs, err := s.ListConversations(ctx, session)
	if err != nil {
		return nil, false, err
	}
	for _, c := range convs {
		if c.ID == conversationID {
			return c, true, nil
		}
	}
	return nil, false, nil
}
