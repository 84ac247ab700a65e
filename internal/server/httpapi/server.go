// Package httpapi exposes the marketplace over HTTP/JSON using Fiber.
// Handlers stay thin: they parse the request, call a service, and map
// service errors to status codes.
package httpapi

import (
	"context"

	"github.com/anypart/marketplace/internal/logging"
	"github.com/anypart/marketplace/internal/server/models"
	"github.com/anypart/marketplace/internal/server/services"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session_token"

// Service interfaces consumed by the handlers. The concrete implementations
// live in the services package; tests substitute fakes.
type (
	UnlockAPI interface {
		Unlock(ctx context.Context, buyerID, productID string) (*services.UnlockResult, error)
	}

	LedgerAPI interface {
		AvailableCredits(ctx context.Context, buyerID string) (int, error)
		ListGrants(ctx context.Context, buyerID string) ([]*models.Grant, error)
		MintTokens(ctx context.Context, buyerID string, count, validityDays int, purchaseRef string) ([]string, error)
	}

	SessionAPI interface {
		Resolve(ctx context.Context, token string) (*models.Session, error)
		RegisterBuyer(ctx context.Context, buyer *models.Buyer, password string) (*models.Buyer, error)
		RegisterSeller(ctx context.Context, seller *models.Seller, password string) (*models.Seller, error)
		LoginBuyer(ctx context.Context, userName, password string) (*models.Session, error)
		LoginSeller(ctx context.Context, userName, password string) (*models.Session, error)
		Logout(ctx context.Context, token string) error
	}

	CatalogAPI interface {
		GetProductDetails(ctx context.Context, productID, buyerID string) (*models.ProductView, error)
		ListFeatured(ctx context.Context, limit int) ([]*models.Product, error)
		ListUnlocked(ctx context.Context, buyerID string) ([]*models.Product, error)
		ListSellerProducts(ctx context.Context, sellerID string) ([]*models.Product, error)
		CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
		UpdateProduct(ctx context.Context, product *models.Product) error
	}

	PaymentAPI interface {
		ListPackages(ctx context.Context) ([]*models.CreditPackage, error)
		ListPayments(ctx context.Context, buyerID string) ([]*models.Payment, error)
		StartCheckout(ctx context.Context, buyerID, packageID string) (*services.CheckoutRequest, error)
		HandleNotify(ctx context.Context, p services.NotifyParams) error
	}

	ChatAPI interface {
		StartConversation(ctx context.Context, buyerID, productID string) (*models.Conversation, error)
		ListConversations(ctx context.Context, session *models.Session) ([]*models.Conversation, error)
		SendMessage(ctx context.Context, session *models.Session, conversationID, body string) (*models.Message, error)
		ListMessages(ctx context.Context, session *models.Session, conversationID string) ([]*models.Message, error)
	}

	AdminAPI interface {
		Login(ctx context.Context, userName, password string) (string, error)
		Authenticate(tokenString string) (string, error)
	}

	ImageAPI interface {
		GetPresignedPutURL(ctx context.Context, sellerID string) (string, string, error)
		GetPresignedGetURL(ctx context.Context, key string) (string, error)
	}
)

// Server bundles the HTTP surface and its dependencies.
type Server struct {
	app      *fiber.App
	logger   logging.Logger
	unlock   UnlockAPI
	ledger   LedgerAPI
	sessions SessionAPI
	catalog  CatalogAPI
	payments PaymentAPI
	chats    ChatAPI
	admin    AdminAPI
	images   ImageAPI
}

// NewServer builds the Fiber app and registers all routes.
func NewServer(logger logging.Logger, unlock UnlockAPI, ledger LedgerAPI, sessions SessionAPI,
	catalog CatalogAPI, payments PaymentAPI, chats ChatAPI, admin AdminAPI, images ImageAPI) *Server {
	s := &Server{
		app:      fiber.New(),
		logger:   logger,
		unlock:   unlock,
		ledger:   ledger,
		sessions: sessions,
		catalog:  catalog,
		payments: payments,
		chats:    chats,
		admin:    admin,
		images:   images,
	}
	s.routes()
	return s
}

// App exposes the underlying Fiber app (used by tests via app.Test).
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) routes() {
	s.app.Use(requestid.New())
	s.app.Use(s.logRequests)
	s.app.Use(s.attachSession)

	api := s.app.Group("/api")

	// auth
	api.Post("/buyers/register", s.handleBuyerRegister)
	api.Post("/buyers/login", s.handleBuyerLogin)
	api.Post("/sellers/register", s.handleSellerRegister)
	api.Post("/sellers/login", s.handleSellerLogin)
	api.Post("/logout", s.handleLogout)

	// catalog
	api.Get("/products/featured", s.handleListFeatured)
	api.Get("/products/:id", s.handleProductDetails)

	// the core unlock operation
	api.Post("/products/:id/unlock", s.requireBuyer(s.handleUnlock))

	// buyer ledger
	api.Get("/credits", s.requireBuyer(s.handleCredits))
	api.Get("/grants", s.requireBuyer(s.handleGrants))
	api.Get("/unlocked", s.requireBuyer(s.handleListUnlocked))

	// purchases
	api.Get("/packages", s.handleListPackages)
	api.Post("/packages/:id/checkout", s.requireBuyer(s.handleCheckout))
	api.Post("/payments/notify", s.handlePaymentNotify)
	api.Get("/payments", s.requireBuyer(s.handleListPayments))

	// seller console
	api.Get("/seller/products", s.requireSeller(s.handleSellerProducts))
	api.Post("/seller/products", s.requireSeller(s.handleCreateProduct))
	api.Put("/seller/products/:id", s.requireSeller(s.handleUpdateProduct))
	api.Post("/seller/images/presign", s.requireSeller(s.handleImagePresign))

	// chat
	api.Post("/products/:id/chat", s.requireBuyer(s.handleStartConversation))
	api.Get("/chats", s.requirePrincipal(s.handleListConversations))
	api.Get("/chats/:id/messages", s.requirePrincipal(s.handleListMessages))
	api.Post("/chats/:id/messages", s.requirePrincipal(s.handleSendMessage))

	// back office
	api.Post("/admin/login", s.handleAdminLogin)
	api.Post("/admin/credits", s.requireAdmin(s.handleAdminMint))
}

// Run starts the listener and shuts it down when ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()
	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "shutting down http server")
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}
