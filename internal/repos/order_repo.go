package repos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, user_id, complete, status, created_at,
	COALESCE(payment_reference,'') AS payment_reference,
	COALESCE(gateway_order_id,'') AS gateway_order_id,
	COALESCE(gateway_amount,0) AS gateway_amount`

// ---------- Open order (the cart) ----------

// EnsureOpen returns the user's open order, creating it first if needed.
// The partial unique index on orders(user_id) WHERE complete = 0 turns a
// concurrent duplicate insert into a no-op.
func (r *OrderRepo) EnsureOpen(ctx context.Context, userID string, now time.Time) (domain.Order, error) {
	if _, err := r.db.ExecContext(ctx, `
	  INSERT INTO orders(user_id, complete, status, created_at)
	  VALUES (?, 0, 'Pending', ?)
	  ON CONFLICT DO NOTHING
	`, userID, now.UTC().Format(time.RFC3339)); err != nil {
		return domain.Order{}, err
	}
	return r.FindOpen(ctx, userID)
}

// FindOpen returns sql.ErrNoRows when the user has no open order.
func (r *OrderRepo) FindOpen(ctx context.Context, userID string) (domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, r.db, &o, `
	  SELECT `+orderColumns+`
	  FROM orders
	  WHERE user_id = ? AND complete = 0
	`, userID)
	return o, err
}

// GetForUser scopes the lookup to the owner; other users' orders look missing.
func (r *OrderRepo) GetForUser(ctx context.Context, id int64, userID string) (domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, r.db, &o, `
	  SELECT `+orderColumns+`
	  FROM orders
	  WHERE id = ? AND user_id = ?
	`, id, userID)
	return o, err
}

func (r *OrderRepo) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.db, &items, `
	  SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name,
	         p.price AS unit_price, oi.quantity
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY oi.id
	`, orderID)
	return items, err
}

// ---------- Line items ----------

// AddItem inserts the product with quantity 1 or bumps the existing line by 1.
func (r *OrderRepo) AddItem(ctx context.Context, orderID, productID int64) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO order_items(order_id, product_id, quantity)
	  VALUES (?, ?, 1)
	  ON CONFLICT(order_id, product_id) DO UPDATE
	  SET quantity = order_items.quantity + 1
	`, orderID, productID)
	return err
}

// OpenItem loads an item only if it sits in userID's open order.
func (r *OrderRepo) OpenItem(ctx context.Context, itemID int64, userID string) (domain.OrderItem, error) {
	var it domain.OrderItem
	err := sqlx.GetContext(ctx, r.db, &it, `
	  SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name,
	         p.price AS unit_price, oi.quantity
	  FROM order_items oi
	  JOIN orders o   ON o.id = oi.order_id
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.id = ? AND o.user_id = ? AND o.complete = 0
	`, itemID, userID)
	return it, err
}

func (r *OrderRepo) SetItemQuantity(ctx context.Context, itemID int64, qty int) error {
	return expectOne(r.db.ExecContext(ctx, `UPDATE order_items SET quantity = ? WHERE id = ?`, qty, itemID))
}

func (r *OrderRepo) DeleteItem(ctx context.Context, itemID int64) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM order_items WHERE id = ?`, itemID))
}

// ---------- Checkout & payment ----------

// SetGatewayOrder records the remote order and the amount, in minor units, it charges.
func (r *OrderRepo) SetGatewayOrder(ctx context.Context, orderID int64, ref string, amount int64) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE orders SET gateway_order_id = ?, gateway_amount = ? WHERE id = ?`, ref, amount, orderID))
}

// MarkPaid completes a pending order.
func (r *OrderRepo) MarkPaid(ctx context.Context, orderID int64, paymentRef string) error {
	return expectOne(r.db.ExecContext(ctx, `
	  UPDATE orders
	  SET complete = 1, status = 'Paid', payment_reference = ?
	  WHERE id = ? AND status = 'Pending'
	`, paymentRef, orderID))
}

// MarkCancelled closes a pending order without payment.
func (r *OrderRepo) MarkCancelled(ctx context.Context, orderID int64) error {
	return expectOne(r.db.ExecContext(ctx, `
	  UPDATE orders
	  SET complete = 1, status = 'Cancelled'
	  WHERE id = ? AND status = 'Pending'
	`, orderID))
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT `+orderColumns+`
	  FROM orders
	  WHERE user_id = ?
	  ORDER BY id DESC
	`, userID)
	return out, err
}

// expectOne maps "nothing matched" onto sql.ErrNoRows.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
