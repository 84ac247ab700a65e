package repomanager

import (
	"context"
	"database/sql"

	"github.com/anypart/marketplace/internal/dbx"
	"github.com/anypart/marketplace/internal/server/repositories/admins"
	"github.com/anypart/marketplace/internal/server/repositories/buyers"
	"github.com/anypart/marketplace/internal/server/repositories/chats"
	"github.com/anypart/marketplace/internal/server/repositories/credittokens"
	"github.com/anypart/marketplace/internal/server/repositories/grants"
	"github.com/anypart/marketplace/internal/server/repositories/payments"
	"github.com/anypart/marketplace/internal/server/repositories/products"
	"github.com/anypart/marketplace/internal/server/repositories/sellers"
	"github.com/anypart/marketplace/internal/server/repositories/sessions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Buyers(db dbx.DBTX) buyers.Repository
	Sellers(db dbx.DBTX) sellers.Repository
	Admins(db dbx.DBTX) admins.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Products(db dbx.DBTX) products.Repository
	CreditTokens(db dbx.DBTX) credittokens.Repository
	Grants(db dbx.DBTX) grants.Repository
	Payments(db dbx.DBTX) payments.Repository
	Chats(db dbx.DBTX) chats.Repository
}
