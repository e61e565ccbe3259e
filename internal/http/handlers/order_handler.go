package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Orders    *services.OrderService
	Invoices  *services.InvoiceService
	StoreName string
}

func (h *OrderHandler) orderID(c *fiber.Ctx) (int64, error) {
	id, ok := validate.ID(c.Params("orderId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "order"})
		return 0, services.ErrNotFound
	}
	return id, nil
}

// Invoice streams the order's PDF invoice as an attachment.
func (h *OrderHandler) Invoice(c *fiber.Ctx) error {
	id, err := h.orderID(c)
	if err != nil {
		return err
	}
	d, pdf, err := h.Invoices.Invoice(c.UserContext(), id, currentUser(c).ID)
	switch {
	case errors.Is(err, services.ErrRenderFailure):
		applog.Error(c, "invoice.render.fail", err, map[string]any{"order_id": id})
		data := fiber.Map{"StoreName": h.StoreName, "Order": d}
		var doc bytes.Buffer
		if views := c.App().Config().Views; views != nil {
			if rerr := views.Render(&doc, "invoice", data); rerr != nil {
				doc.WriteString(rerr.Error())
			}
		}
		c.Status(fiber.StatusInternalServerError)
		if wantsJSON(c) {
			return c.JSON(fiber.Map{"error": "invoice could not be rendered", "diagnostics": err.Error()})
		}
		return render(c, "invoice_error", fiber.Map{"Diagnostics": err.Error(), "Document": doc.String()})
	case errors.Is(err, services.ErrNotFound):
		applog.Security(c, "access.denied.invoice", map[string]any{"order_id": id})
		return err
	case err != nil:
		return err
	}

	applog.Audit(c, "invoice.render", map[string]any{"order_id": id, "bytes": len(pdf)})
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="invoice_%d.pdf"`, id))
	c.Type("pdf")
	return c.Send(pdf)
}

// View shows the invoice as a page instead of a download.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, err := h.orderID(c)
	if err != nil {
		return err
	}
	d, err := h.Orders.Detail(c.UserContext(), id, currentUser(c).ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		}
		return err
	}
	return respond(c, "invoice", fiber.Map{"StoreName": h.StoreName, "Order": d}, orderPayload(d))
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.History(c.UserContext(), currentUser(c).ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return err
	}
	return respond(c, "orders", fiber.Map{"Title": "Orders", "Orders": orders}, fiber.Map{"orders": orders})
}
