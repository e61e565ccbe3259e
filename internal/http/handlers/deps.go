package handlers

import (
	"storefront/internal/config"
	"storefront/internal/invoice"
	"storefront/internal/payment"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
}

// NewDeps wires services and handlers. gw may be nil to run without payments.
func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, gw payment.Gateway) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartService(db)
	checkoutSvc := services.NewCheckoutService(db, gw, cfg.Payment.Currency)
	orderSvc := services.NewOrderService(db)
	invoiceSvc := services.NewInvoiceService(orderSvc, invoice.NewRenderer(cfg.Invoice))

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: auth, CookieSecure: cfg.CookieSecure},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc, Checkout: checkoutSvc},
		CheckoutHandler: &CheckoutHandler{Service: checkoutSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc, Invoices: invoiceSvc, StoreName: cfg.Invoice.StoreName},
	}
}
