package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

type CheckoutHandler struct {
	Service *services.CheckoutService
}

func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	cc, err := h.Service.BeginCheckout(c.UserContext(), currentUser(c).ID)
	if err != nil {
		if errors.Is(err, services.ErrGateway) {
			applog.Error(c, "checkout.begin.fail", err, nil)
		}
		return err
	}
	applog.Audit(c, "checkout.begin", map[string]any{
		"order_id":         cc.Order.Order.ID,
		"gateway_order_id": cc.GatewayOrderID,
		"amount":           cc.Amount,
	})
	return respond(c, "checkout", fiber.Map{"Title": "Checkout", "Checkout": cc}, cc)
}

// PaymentSuccess is where the gateway sends the shopper after paying.
func (h *CheckoutHandler) PaymentSuccess(c *fiber.Ctx) error {
	req := services.ConfirmRequest{
		OrderID:          c.Query("order_id"),
		UserID:           currentUser(c).ID,
		GatewayOrderID:   c.Query("gateway_order_id"),
		GatewayPaymentID: c.Query("gateway_payment_id"),
		Signature:        c.Query("gateway_signature"),
	}

	d, err := h.Service.ConfirmPayment(c.UserContext(), req)
	if err != nil {
		fields := map[string]any{"order_id": req.OrderID, "gateway_order_id": req.GatewayOrderID}
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrBadRequest) {
			applog.Security(c, "payment.confirm.fail", fields)
		} else {
			applog.Error(c, "payment.confirm.fail", err, fields)
		}
		return err
	}
	applog.Audit(c, "payment.confirm", map[string]any{
		"order_id":          d.Order.ID,
		"payment_reference": d.Order.PaymentReference,
	})
	return respond(c, "payment_success", fiber.Map{"Title": "Payment received", "Order": d}, orderPayload(d))
}
