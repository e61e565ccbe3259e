package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// CartService manages the user's open order. Each call is one transaction.
type CartService struct {
	DB  *sqlx.DB
	Now func() time.Time
}

func NewCartService(db *sqlx.DB) *CartService {
	return &CartService{DB: db, Now: time.Now}
}

func (s *CartService) OpenOrder(ctx context.Context, userID string) (domain.OrderDetail, error) {
	var d domain.OrderDetail
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		var err error
		d, err = loadOpen(ctx, repos.NewOrderRepo(tx), userID, s.Now())
		return err
	})
	return d, err
}

// Add puts one unit of the product into the open order.
func (s *CartService) Add(ctx context.Context, userID string, productID int64) (domain.OrderDetail, error) {
	var d domain.OrderDetail
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if _, err := repos.NewProductRepo(tx).Get(ctx, productID); err != nil {
			return notFound(err, fmt.Sprintf("product %d", productID))
		}
		orders := repos.NewOrderRepo(tx)
		o, err := orders.EnsureOpen(ctx, userID, s.Now())
		if err != nil {
			return fmt.Errorf("ensure open order: %w", err)
		}
		if err := orders.AddItem(ctx, o.ID, productID); err != nil {
			return fmt.Errorf("add item: %w", err)
		}
		d, err = loadDetail(ctx, orders, o)
		return err
	})
	return d, err
}

func (s *CartService) Increase(ctx context.Context, itemID int64, userID string) error {
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		it, err := orders.OpenItem(ctx, itemID, userID)
		if err != nil {
			return notFound(err, fmt.Sprintf("cart item %d", itemID))
		}
		return orders.SetItemQuantity(ctx, it.ID, it.Quantity+1)
	})
}

// Decrease removes one unit; the last unit takes the line with it.
func (s *CartService) Decrease(ctx context.Context, itemID int64, userID string) error {
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		it, err := orders.OpenItem(ctx, itemID, userID)
		if err != nil {
			return notFound(err, fmt.Sprintf("cart item %d", itemID))
		}
		if it.Quantity > 1 {
			return orders.SetItemQuantity(ctx, it.ID, it.Quantity-1)
		}
		return orders.DeleteItem(ctx, it.ID)
	})
}

func loadOpen(ctx context.Context, orders *repos.OrderRepo, userID string, now time.Time) (domain.OrderDetail, error) {
	o, err := orders.EnsureOpen(ctx, userID, now)
	if err != nil {
		return domain.OrderDetail{}, fmt.Errorf("ensure open order: %w", err)
	}
	return loadDetail(ctx, orders, o)
}

func loadDetail(ctx context.Context, orders *repos.OrderRepo, o domain.Order) (domain.OrderDetail, error) {
	items, err := orders.Items(ctx, o.ID)
	if err != nil {
		return domain.OrderDetail{}, fmt.Errorf("load items of order %d: %w", o.ID, err)
	}
	return domain.OrderDetail{Order: o, Items: items}, nil
}
