package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// OrderService reads orders on behalf of their owner.
type OrderService struct {
	DB *sqlx.DB
}

func NewOrderService(db *sqlx.DB) *OrderService { return &OrderService{DB: db} }

// Detail returns ErrNotFound for orders that do not exist or belong to someone else.
func (s *OrderService) Detail(ctx context.Context, orderID int64, userID string) (domain.OrderDetail, error) {
	var d domain.OrderDetail
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		o, err := orders.GetForUser(ctx, orderID, userID)
		if err != nil {
			return notFound(err, fmt.Sprintf("order %d", orderID))
		}
		d, err = loadDetail(ctx, orders, o)
		return err
	})
	return d, err
}

func (s *OrderService) History(ctx context.Context, userID string) ([]domain.Order, error) {
	return repos.NewOrderRepo(s.DB).ListByUser(ctx, userID)
}
