package models

import "time"

// Conversation is a buyer-seller chat thread about one product.
type Conversation struct {
	ID        string
	BuyerID   string
	SellerID  string
	ProductID string
	CreatedAt time.Time
}

// Message is a single chat message. SenderKind is PrincipalBuyer or
// PrincipalSeller.
type Message struct {
	ID             string
	ConversationID string
	SenderKind     string
	Body           string
	CreatedAt      time.Time
}
