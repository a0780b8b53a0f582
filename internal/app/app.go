// Package app wires the core services into one application facade that
// the transport adapters call. It decouples presentation from business
// logic: implementations contain no display logic of any kind.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ledgerlite/internal/ai"
	"ledgerlite/internal/core"
	"ledgerlite/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDraftingUnavailable is returned when the AI drafting collaborator is
// not configured (no API key).
var ErrDraftingUnavailable = errors.New("invoice drafting is not configured")

// Config holds the collaborator settings the facade needs beyond the pool.
type Config struct {
	OpenAIKey       string // empty disables AI invoice drafting
	UploadDir       string
	UploadURLPrefix string
}

// App bundles every service behind one constructor. Adapters depend on
// the interfaces, never the pgx-backed implementations.
type App struct {
	Users          core.UserService
	Roles          core.RoleService
	Parties        core.PartyService
	Products       core.ProductService
	Accounts       core.AccountService
	Expenses       core.ExpenseService
	Invoices       core.InvoiceService
	PurchaseOrders core.PurchaseOrderService
	Reports        core.ReportingService
	Recurrence     core.RecurrenceExecutor

	drafter  ai.DraftService
	receipts storage.Storage
}

// New constructs the facade over one connection pool.
func New(pool *pgxpool.Pool, cfg Config) (*App, error) {
	receipts, err := storage.NewLocalDisk(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		return nil, err
	}

	a := &App{
		Users:          core.NewUserService(pool),
		Roles:          core.NewRoleService(pool),
		Parties:        core.NewPartyService(pool),
		Products:       core.NewProductService(pool),
		Accounts:       core.NewAccountService(pool),
		Expenses:       core.NewExpenseService(pool),
		Invoices:       core.NewInvoiceService(pool),
		PurchaseOrders: core.NewPurchaseOrderService(pool),
		Reports:        core.NewReportingService(pool),
		Recurrence:     core.NewRecurrenceService(pool),
		receipts:       receipts,
	}
	if cfg.OpenAIKey != "" {
		a.drafter = ai.NewDrafter(cfg.OpenAIKey)
	}
	return a, nil
}

// Session identifies an authenticated user for the transport layer.
type Session struct {
	UserID   int         `json:"user_id"`
	Username string      `json:"username"`
	Roles    []core.Role `json:"roles"`
}

// Login verifies credentials and loads the user's roles.
func (a *App) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := a.Users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	roles, err := a.Roles.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Username: user.Username, Roles: roles}, nil
}

// Signup registers a new user (with the default role) and returns a
// session so the caller can log them straight in.
func (a *App) Signup(ctx context.Context, username, email, password string) (*Session, error) {
	user, err := a.Users.CreateUser(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Username: user.Username, Roles: []core.Role{core.RoleUser}}, nil
}

// DraftInvoice turns a plain-language billing description into an invoice
// draft, grounding the model on the owner's customers and products.
func (a *App) DraftInvoice(ctx context.Context, ownerID int, text string) (*core.DraftResponse, error) {
	if a.drafter == nil {
		return nil, ErrDraftingUnavailable
	}
	customers, err := a.Parties.ListCustomers(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load customers for drafting: %w", err)
	}
	products, err := a.Products.ListProducts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load products for drafting: %w", err)
	}
	return a.drafter.InterpretInvoice(ctx, text, customers, products)
}

// SaveReceipt stores an uploaded receipt file and returns its URL.
func (a *App) SaveReceipt(ctx context.Context, filename string, r io.Reader) (string, error) {
	return a.receipts.Save(ctx, filename, r)
}
