package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

// CheckoutService hands the open order to the payment gateway and records the
// outcome. Gateway is nil when payments are disabled.
type CheckoutService struct {
	DB       *sqlx.DB
	Gateway  payment.Gateway
	Currency string
	Now      func() time.Time
}

func NewCheckoutService(db *sqlx.DB, gw payment.Gateway, currency string) *CheckoutService {
	return &CheckoutService{DB: db, Gateway: gw, Currency: currency, Now: time.Now}
}

type CheckoutContext struct {
	Order          domain.OrderDetail `json:"order"`
	Totals         domain.Totals      `json:"totals"`
	Active         bool               `json:"gateway_active"`
	GatewayOrderID string             `json:"gateway_order_id,omitempty"`
	Amount         int64              `json:"amount,omitempty"`
	Currency       string             `json:"currency,omitempty"`
	KeyID          string             `json:"key_id,omitempty"`
}

func (s *CheckoutService) BeginCheckout(ctx context.Context, userID string) (CheckoutContext, error) {
	var d domain.OrderDetail
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		var err error
		d, err = loadOpen(ctx, repos.NewOrderRepo(tx), userID, s.Now())
		return err
	})
	if err != nil {
		return CheckoutContext{}, err
	}

	cc := CheckoutContext{Order: d, Totals: d.Totals()}
	if s.Gateway == nil {
		return cc, nil
	}

	amount := domain.MinorUnits(d.GrandTotal())
	if amount <= 0 {
		return CheckoutContext{}, fmt.Errorf("%w: cart is empty", ErrBadRequest)
	}

	// The gateway call stays outside the transaction so a slow provider does
	// not hold the database.
	remote, err := s.Gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   amount,
		Currency: s.Currency,
		Receipt:  fmt.Sprintf("order_%d", d.Order.ID),
		Capture:  1,
		Notes:    map[string]string{"store_order_id": strconv.FormatInt(d.Order.ID, 10)},
	})
	if err != nil {
		return CheckoutContext{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		return repos.NewOrderRepo(tx).SetGatewayOrder(ctx, d.Order.ID, remote.ID, amount)
	})
	if err != nil {
		return CheckoutContext{}, fmt.Errorf("record gateway order: %w", err)
	}
	cc.Order.Order.GatewayOrderID = remote.ID
	cc.Order.Order.GatewayAmount = amount

	cc.Active = true
	cc.GatewayOrderID = remote.ID
	cc.Amount = amount
	cc.Currency = s.Currency
	cc.KeyID = s.Gateway.KeyID()
	return cc, nil
}

type ConfirmRequest struct {
	OrderID          string
	UserID           string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// ConfirmPayment marks the order paid. With a gateway configured the payment
// signature must verify, the gateway order must be the one issued at checkout
// and the order total must still equal the amount that gateway order charges.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, req ConfirmRequest) (domain.OrderDetail, error) {
	raw := strings.TrimSpace(req.OrderID)
	if raw == "" {
		return domain.OrderDetail{}, fmt.Errorf("%w: no order id provided", ErrBadRequest)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return domain.OrderDetail{}, fmt.Errorf("order %q: %w", raw, ErrNotFound)
	}

	var d domain.OrderDetail
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		o, err := orders.GetForUser(ctx, id, req.UserID)
		if err != nil {
			return notFound(err, fmt.Sprintf("order %d", id))
		}

		switch o.Status {
		case domain.StatusPaid:
			d, err = loadDetail(ctx, orders, o)
			return err
		case domain.StatusCancelled:
			return fmt.Errorf("%w: order %d was cancelled", ErrBadRequest, id)
		}

		// Gateway refs are only inspected once the caller is known to own the order.
		for name, v := range map[string]string{
			"gateway_order_id":   req.GatewayOrderID,
			"gateway_payment_id": req.GatewayPaymentID,
			"gateway_signature":  req.Signature,
		} {
			if _, ok := validate.Ref(v); !ok {
				return fmt.Errorf("%w: malformed %s", ErrBadRequest, name)
			}
		}

		ref := strings.TrimSpace(req.GatewayPaymentID)
		if s.Gateway != nil {
			if o.GatewayOrderID == "" || strings.TrimSpace(req.GatewayOrderID) != o.GatewayOrderID {
				return fmt.Errorf("%w: gateway order does not match order %d", ErrBadRequest, id)
			}
			if err := s.Gateway.VerifyPayment(o.GatewayOrderID, ref, strings.TrimSpace(req.Signature)); err != nil {
				return fmt.Errorf("%w: %v", ErrBadRequest, err)
			}
			pending, err := loadDetail(ctx, orders, o)
			if err != nil {
				return err
			}
			if due := domain.MinorUnits(pending.GrandTotal()); due != o.GatewayAmount {
				return fmt.Errorf("%w: order %d changed after checkout (charged %d, due %d)",
					ErrBadRequest, id, o.GatewayAmount, due)
			}
		}
		if ref == "" {
			ref = domain.PlaceholderPaymentRef
		}

		if err := orders.MarkPaid(ctx, o.ID, ref); err != nil {
			return fmt.Errorf("mark order %d paid: %w", o.ID, err)
		}
		o, err = orders.GetForUser(ctx, o.ID, req.UserID)
		if err != nil {
			return err
		}
		d, err = loadDetail(ctx, orders, o)
		return err
	})
	return d, err
}

// CancelOrder abandons the user's open order; the next cart access starts a new one.
func (s *CheckoutService) CancelOrder(ctx context.Context, userID string) (domain.OrderDetail, error) {
	var d domain.OrderDetail
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		o, err := orders.FindOpen(ctx, userID)
		if err != nil {
			return notFound(err, "open order")
		}
		if err := orders.MarkCancelled(ctx, o.ID); err != nil {
			return fmt.Errorf("cancel order %d: %w", o.ID, err)
		}
		o, err = orders.GetForUser(ctx, o.ID, userID)
		if err != nil {
			return err
		}
		d, err = loadDetail(ctx, orders, o)
		return err
	})
	return d, err
}
