package services

import (
	"context"
	"testing"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buyerSession() *models.Session {
	return &models.Session{Token: "tok", Kind: models.PrincipalBuyer, PrincipalID: "b-1"}
}

func TestStartConversation(t *testing.T) {
	rm := newFakeRepoManager()
	rm.products.viewOut = productView()
	rm.chats.convOut = &models.Conversation{ID: "c-1", BuyerID: "b-1", SellerID: "s-1", ProductID: "p-1"}

	db, _ := newSQLMockDB(t)
	defer db.Close()
	svc := NewChatService(db, rm)

	conv, err := svc.StartConversation(context.Background(), "b-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", conv.ID)
}

func TestStartConversation_UnknownProduct(t *testing.T) {
	rm := newFakeRepoManager()
	rm.products.viewErr = common.ErrNotFound

	db, _ := newSQLMockDB(t)
	defer db.Close()
	svc := NewChatService(db, rm)

	_, err := svc.StartConversation(context.Background(), "b-1", "p-404")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSendMessage_Participant(t *testing.T) {
	rm := newFakeRepoManager()
	rm.chats.buyerConvs = []*models.Conversation{{ID: "c-1", BuyerID: "b-1", SellerID: "s-1"}}

	db, _ := newSQLMockDB(t)
	defer db.Close()
	svc := NewChatService(db, rm)

	msg, err := svc.SendMessage(context.Background(), buyerSession(), "c-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, models.PrincipalBuyer, msg.SenderKind)
	assert.Equal(t, "hello", msg.Body)
}

func TestSendMessage_ForeignThread(t *testing.T) {
	rm := newFakeRepoManager()
	rm.chats.buyerConvs = []*models.Conversation{{ID: "c-1"}}

	db, _ := newSQLMockDB(t)
	defer db.Close()
	svc := NewChatService(db, rm)

	_, err := svc.SendMessage(context.Background(), buyerSession(), "c-other", "hi")
	require.ErrorIs(t, err, common.ErrNotFound,
		"a thread the principal does not participate in behaves like a missing one")
}

func TestListConversations_ByKind(t *testing.T) {
	rm := newFakeRepoManager()
	rm.chats.buyerConvs = []*models.Conversation{{ID: "c-b"}}
	rm.chats.sellerConvs = []*models.Conversation{{ID: "c-s"}}

	db, _ := newSQLMockDB(t)
	defer db.Close()
	svc := NewChatService(db, rm)

	got, err := svc.ListConversations(context.Background(), buyerSession())
	require.NoError(t, err)
	assert.Equal(t, "c-b", got[0].ID)

	got, err = svc.ListConversations(context.Background(), &models.Session{Kind: models.PrincipalSeller, PrincipalID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, "c-s", got[0].ID)
}
