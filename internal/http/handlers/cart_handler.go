package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
}

func orderPayload(d domain.OrderDetail) fiber.Map {
	return fiber.Map{"order": d.Order, "items": d.Items, "totals": d.Totals()}
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	d, err := h.Cart.OpenOrder(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return respond(c, "cart", fiber.Map{"Title": "Cart", "Order": d}, orderPayload(d))
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return services.ErrNotFound
	}
	d, err := h.Cart.Add(c.UserContext(), currentUser(c).ID, productID)
	if err != nil {
		return err
	}
	applog.Audit(c, "cart.add", map[string]any{"order_id": d.Order.ID, "product_id": productID})
	return h.done(c)
}

func (h *CartHandler) Increase(c *fiber.Ctx) error {
	return h.adjust(c, "cart.increase", h.Cart.Increase)
}

func (h *CartHandler) Decrease(c *fiber.Ctx) error {
	return h.adjust(c, "cart.decrease", h.Cart.Decrease)
}

func (h *CartHandler) adjust(c *fiber.Ctx, action string, op func(ctx context.Context, itemID int64, userID string) error) error {
	itemID, ok := validate.ID(c.Params("itemId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "item"})
		return services.ErrNotFound
	}
	if err := op(c.UserContext(), itemID, currentUser(c).ID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			applog.Security(c, "access.denied.item", map[string]any{"item_id": itemID})
		}
		return err
	}
	applog.Audit(c, action, map[string]any{"item_id": itemID})
	return h.done(c)
}

// Cancel abandons the open order.
func (h *CartHandler) Cancel(c *fiber.Ctx) error {
	d, err := h.Checkout.CancelOrder(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": d.Order.ID})
	if wantsJSON(c) {
		return c.JSON(orderPayload(d))
	}
	return c.Redirect("/")
}

// done answers a cart mutation: JSON clients get the fresh cart, browsers go back to it.
func (h *CartHandler) done(c *fiber.Ctx) error {
	if !wantsJSON(c) {
		return c.Redirect("/cart/")
	}
	d, err := h.Cart.OpenOrder(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(orderPayload(d))
}
