// Package httpserver assembles the storefront's Fiber application.
package httpserver

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/payment"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/web"
)

// Limits are the per-client request budgets.
type Limits struct {
	Global int
	Login  int
}

var DefaultLimits = Limits{Global: 120, Login: 5}

// New builds the app. gw may be nil, in which case payments are confirmed
// without a provider.
func New(cfg config.Config, db *sqlx.DB, gw payment.Gateway, limits Limits) *fiber.App {
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	deps := handlers.NewDeps(db, cfg, authSvc, gw)

	app := fiber.New(fiber.Config{
		Views:        web.Engine(),
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: applog.Writer()}))
	app.Use(helmet.New())
	app.Use(handlers.LoadUser(authSvc))
	app.Use(limiter.New(limiter.Config{
		Max:        limits.Global,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return fiber.NewError(fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// Public pages
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/", deps.CategoryHandler.Home)
	app.Get("/category/:id/", deps.CategoryHandler.List)

	// Auth routes (login throttled)
	auth := deps.AuthHandler
	app.Get("/login/", auth.LoginForm)
	app.Post("/login/", limiter.New(limiter.Config{
		Max:        limits.Login,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		},
	}), auth.Login)
	app.Get("/logout/", auth.Logout)
	app.Post("/logout/", auth.Logout)

	// Cart, checkout and invoices
	user := handlers.RequireUser()
	app.Get("/cart/", user, deps.CartHandler.View)
	app.Get("/add-to-cart/:productId/", user, deps.CartHandler.Add)
	app.Get("/cart/increase/:itemId/", user, deps.CartHandler.Increase)
	app.Get("/cart/decrease/:itemId/", user, deps.CartHandler.Decrease)
	app.Get("/cart/cancel/", user, deps.CartHandler.Cancel)
	app.Get("/checkout/", user, deps.CheckoutHandler.Checkout)
	app.Get("/payment-success/", user, deps.CheckoutHandler.PaymentSuccess)
	app.Get("/orders/", user, deps.OrderHandler.History)
	app.Get("/invoice/:orderId/", user, deps.OrderHandler.Invoice)
	app.Get("/invoice/:orderId/view/", user, deps.OrderHandler.View)

	app.Use(handlers.NotFound)
	return app
}
