package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"storefront/internal/domain"
)

type InvoiceRenderer interface {
	Render(w io.Writer, d domain.OrderDetail) error
}

type InvoiceService struct {
	Orders   *OrderService
	Renderer InvoiceRenderer
}

func NewInvoiceService(orders *OrderService, r InvoiceRenderer) *InvoiceService {
	return &InvoiceService{Orders: orders, Renderer: r}
}

// Invoice renders the caller's order as a PDF. On ErrRenderFailure the
// returned detail is still populated so the caller can show diagnostics.
func (s *InvoiceService) Invoice(ctx context.Context, orderID int64, userID string) (domain.OrderDetail, []byte, error) {
	d, err := s.Orders.Detail(ctx, orderID, userID)
	if err != nil {
		return domain.OrderDetail{}, nil, err
	}
	var buf bytes.Buffer
	if err := s.Renderer.Render(&buf, d); err != nil {
		return d, nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return d, buf.Bytes(), nil
}
