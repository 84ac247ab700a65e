package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anypart/marketplace/internal/dbx"
	"github.com/anypart/marketplace/internal/logging"
	"github.com/anypart/marketplace/internal/server/models"
	adminsrepo "github.com/anypart/marketplace/internal/server/repositories/admins"
	buyersrepo "github.com/anypart/marketplace/internal/server/repositories/buyers"
	chatsrepo "github.com/anypart/marketplace/internal/server/repositories/chats"
	tokensrepo "github.com/anypart/marketplace/internal/server/repositories/credittokens"
	grantsrepo "github.com/anypart/marketplace/internal/server/repositories/grants"
	paymentsrepo "github.com/anypart/marketplace/internal/server/repositories/payments"
	productsrepo "github.com/anypart/marketplace/internal/server/repositories/products"
	sellersrepo "github.com/anypart/marketplace/internal/server/repositories/sellers"
	sessionsrepo "github.com/anypart/marketplace/internal/server/repositories/sessions"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// --- fake repositories ---

type fakeTokensRepo struct {
	countOut int
	countErr error

	selectOut  *models.CreditToken
	selectErr  error
	selectErrs []error // consumed before selectErr when non-empty
	selects    int

	markErr  error
	markedID string
	marked   int

	mintOut       []string
	mintErr       error
	minted        int
	lastExpiresAt *time.Time

	lastEnforceExpiry bool
}

func (f *fakeTokensRepo) CountUnused(ctx context.Context, buyerID string, enforceExpiry bool, now time.Time) (int, error) {
	f.lastEnforceExpiry = enforceExpiry
	return f.countOut, f.countErr
}

func (f *fakeTokensRepo) SelectForConsume(ctx context.Context, buyerID string, enforceExpiry bool, now time.Time) (*models.CreditToken, error) {
	f.selects++
	f.lastEnforceExpiry = enforceExpiry
	if len(f.selectErrs) > 0 {
		err := f.selectErrs[0]
		f.selectErrs = f.selectErrs[1:]
		if err != nil {
			return nil, err
		}
		return f.selectOut, nil
	}
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.selectOut, nil
}

func (f *fakeTokensRepo) MarkUsed(ctx context.Context, tokenID, grantID string) error {
	f.marked++
	f.markedID = tokenID
	return f.markErr
}

func (f *fakeTokensRepo) Mint(ctx context.Context, buyerID string, count int, expiresAt *time.Time, purchaseRef string) ([]string, error) {
	f.minted += count
	f.lastExpiresAt = expiresAt
	return f.mintOut, f.mintErr
}

type fakeGrantsRepo struct {
	findOut  *models.Grant
	findErr  error
	findOuts []*models.Grant // consumed before findOut/findErr when non-empty
	findErrs []error

	createOut *models.Grant
	createErr error
	creates   int

	listOut []*models.Grant
	listErr error
}

func (f *fakeGrantsRepo) Find(ctx context.Context, buyerID, productID string) (*models.Grant, error) {
	if len(f.findErrs) > 0 {
		out, err := f.findOuts[0], f.findErrs[0]
		f.findOuts, f.findErrs = f.findOuts[1:], f.findErrs[1:]
		return out, err
	}
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeGrantsRepo) Create(ctx context.Context, grant *models.Grant) (*models.Grant, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	out := *grant
	out.ID = "g-new"
	return &out, nil
}

func (f *fakeGrantsRepo) ListByBuyer(ctx context.Context, buyerID string) ([]*models.Grant, error) {
	return f.listOut, f.listErr
}

type fakeProductsRepo struct {
	viewOut *models.ProductView
	viewErr error

	createOut *models.Product
	createErr error
	updateErr error

	featuredOut []*models.Product
	bySellerOut []*models.Product
	unlockedOut []*models.Product
	listErr     error
}

func (f *fakeProductsRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return p, nil
}
func (f *fakeProductsRepo) Update(ctx context.Context, p *models.Product) error { return f.updateErr }
func (f *fakeProductsRepo) GetView(ctx context.Context, productID string) (*models.ProductView, error) {
	if f.viewErr != nil {
		return nil, f.viewErr
	}
	// repositories hand back fresh rows; copy so redaction in one call
	// cannot leak into the next
	out := *f.viewOut
	return &out, nil
}
func (f *fakeProductsRepo) ListFeatured(ctx context.Context, limit int) ([]*models.Product, error) {
	return f.featuredOut, f.listErr
}
func (f *fakeProductsRepo) ListBySeller(ctx context.Context, sellerID string) ([]*models.Product, error) {
	return f.bySellerOut, f.listErr
}
func (f *fakeProductsRepo) ListUnlockedByBuyer(ctx context.Context, buyerID string) ([]*models.Product, error) {
	return f.unlockedOut, f.listErr
}

type fakeSessionsRepo struct {
	createErr   error
	created     *models.Session
	findOut     *models.Session
	findErr     error
	deleteErr   error
	deleted     []string
	expiredOut  int64
	expiredErr  error
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) error {
	f.created = s
	return f.createErr
}
func (f *fakeSessionsRepo) FindActive(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}
func (f *fakeSessionsRepo) Delete(ctx context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return f.deleteErr
}
func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.expiredOut, f.expiredErr
}

type fakeBuyersRepo struct {
	createOut *models.Buyer
	createErr error
	getOut    *models.Buyer
	getErr    error
}

func (f *fakeBuyersRepo) Create(ctx context.Context, b *models.Buyer) (*models.Buyer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return b, nil
}
func (f *fakeBuyersRepo) GetByLogin(ctx context.Context, userName string) (*models.Buyer, error) {
	return f.getOut, f.getErr
}
func (f *fakeBuyersRepo) GetByID(ctx context.Context, id string) (*models.Buyer, error) {
	return f.getOut, f.getErr
}

type fakeSellersRepo struct {
	createOut *models.Seller
	createErr error
	getOut    *models.Seller
	getErr    error
}

func (f *fakeSellersRepo) Create(ctx context.Context, s *models.Seller) (*models.Seller, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return s, nil
}
func (f *fakeSellersRepo) GetByLogin(ctx context.Context, userName string) (*models.Seller, error) {
	return f.getOut, f.getErr
}
func (f *fakeSellersRepo) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	return f.getOut, f.getErr
}

type fakeAdminsRepo struct {
	getOut *models.Admin
	getErr error
}

func (f *fakeAdminsRepo) GetByLogin(ctx context.Context, userName string) (*models.Admin, error) {
	return f.getOut, f.getErr
}

type fakePaymentsRepo struct {
	pending    *models.Payment
	pendingErr error

	byRefOut *models.Payment
	byRefErr error

	markErr    error
	marks      int
	lastStatus string

	listOut []*models.Payment
	listErr error

	packagesOut []*models.CreditPackage
	packageOut  *models.CreditPackage
	packageErr  error
}

func (f *fakePaymentsRepo) CreatePending(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	f.pending = p
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	return p, nil
}
func (f *fakePaymentsRepo) GetByOrderRef(ctx context.Context, orderRef string) (*models.Payment, error) {
	return f.byRefOut, f.byRefErr
}
func (f *fakePaymentsRepo) MarkStatus(ctx context.Context, orderRef, status, method string, gatewayStatus int) error {
	f.marks++
	f.lastStatus = status
	return f.markErr
}
func (f *fakePaymentsRepo) ListByBuyer(ctx context.Context, buyerID string) ([]*models.Payment, error) {
	return f.listOut, f.listErr
}
func (f *fakePaymentsRepo) ListPackages(ctx context.Context) ([]*models.CreditPackage, error) {
	return f.packagesOut, nil
}
func (f *fakePaymentsRepo) GetPackage(ctx context.Context, id string) (*models.CreditPackage, error) {
	if f.packageErr != nil {
		return nil, f.packageErr
	}
	return f.packageOut, nil
}

type fakeChatsRepo struct {
	convOut *models.Conversation
	convErr error

	buyerConvs  []*models.Conversation
	sellerConvs []*models.Conversation

	msgOut  *models.Message
	msgErr  error
	msgsOut []*models.Message
}

func (f *fakeChatsRepo) GetOrCreateConversation(ctx context.Context, buyerID, sellerID, productID string) (*models.Conversation, error) {
	return f.convOut, f.convErr
}
func (f *fakeChatsRepo) ListConversationsForBuyer(ctx context.Context, buyerID string) ([]*models.Conversation, error) {
	return f.buyerConvs, nil
}
func (f *fakeChatsRepo) ListConversationsForSeller(ctx context.Context, sellerID string) ([]*models.Conversation, error) {
	return f.sellerConvs, nil
}
func (f *fakeChatsRepo) AddMessage(ctx context.Context, m *models.Message) (*models.Message, error) {
	if f.msgErr != nil {
		return nil, f.msgErr
	}
	if f.msgOut != nil {
		return f.msgOut, nil
	}
	m.ID = "m-new"
	return m, nil
}
func (f *fakeChatsRepo) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	return f.msgsOut, nil
}

// fakeRepoManager vends the same fakes regardless of the db handle.
type fakeRepoManager struct {
	tokens   *fakeTokensRepo
	grants   *fakeGrantsRepo
	products *fakeProductsRepo
	sessions *fakeSessionsRepo
	buyers   *fakeBuyersRepo
	sellers  *fakeSellersRepo
	admins   *fakeAdminsRepo
	payments *fakePaymentsRepo
	chats    *fakeChatsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		tokens:   &fakeTokensRepo{},
		grants:   &fakeGrantsRepo{},
		products: &fakeProductsRepo{},
		sessions: &fakeSessionsRepo{},
		buyers:   &fakeBuyersRepo{},
		sellers:  &fakeSellersRepo{},
		admins:   &fakeAdminsRepo{},
		payments: &fakePaymentsRepo{},
		chats:    &fakeChatsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Buyers(db dbx.DBTX) buyersrepo.Repository           { return m.buyers }
func (m *fakeRepoManager) Sellers(db dbx.DBTX) sellersrepo.Repository         { return m.sellers }
func (m *fakeRepoManager) Admins(db dbx.DBTX) adminsrepo.Repository           { return m.admins }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository       { return m.sessions }
func (m *fakeRepoManager) Products(db dbx.DBTX) productsrepo.Repository       { return m.products }
func (m *fakeRepoManager) CreditTokens(db dbx.DBTX) tokensrepo.Repository     { return m.tokens }
func (m *fakeRepoManager) Grants(db dbx.DBTX) grantsrepo.Repository           { return m.grants }
func (m *fakeRepoManager) Payments(db dbx.DBTX) paymentsrepo.Repository       { return m.payments }
func (m *fakeRepoManager) Chats(db dbx.DBTX) chatsrepo.Repository             { return m.chats }
