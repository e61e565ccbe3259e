package handlers

import (
	"time"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *AuthHandler) setSID(c *fiber.Ctx, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  expires,
	})
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Title": "Log in", "Err": "", "Next": validate.NextPath(c.Query("next"))})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	next := validate.NextPath(c.FormValue("next"))

	fail := func(reason string) error {
		fields := map[string]any{"email": email}
		if reason != "" {
			fields["reason"] = reason
		}
		log.Security(c, "auth.login.fail", fields)
		c.Status(fiber.StatusUnauthorized)
		if wantsJSON(c) {
			return c.JSON(fiber.Map{"error": "Invalid email or password"})
		}
		return render(c, "login", fiber.Map{"Title": "Log in", "Err": "Invalid email or password", "Next": next})
	}

	if _, ok := validate.Email(email); !ok {
		return fail("bad_format")
	}
	if !validate.Password(pass) {
		return fail("bad_password_format")
	}

	// Rotate the session id on login.
	sid := uuid.NewString()
	u, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if err != nil {
		return fail("")
	}
	h.setSID(c, sid, time.Time{})

	log.Audit(c, "auth.login.success", map[string]any{"email": email, "user_id": u.ID})
	if wantsJSON(c) {
		return c.JSON(fiber.Map{"user": u, "next": next})
	}
	return c.Redirect(next)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			log.Error(c, "auth.logout.fail", err, nil)
		}
	}
	// Expire cookie
	h.setSID(c, "", time.Now().Add(-1*time.Hour))
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}
