package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Image string `db:"image" json:"image,omitempty"`
}

type Product struct {
	ID          int64           `db:"id" json:"id"`
	CategoryID  int64           `db:"category_id" json:"category_id"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Description string          `db:"description" json:"description"`
	Image       string          `db:"image" json:"image,omitempty"`
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPaid      OrderStatus = "Paid"
	StatusCancelled OrderStatus = "Cancelled"
)

// PlaceholderPaymentRef is recorded when a payment is confirmed without a gateway reference.
const PlaceholderPaymentRef = "test_payment_id"

type Order struct {
	ID               int64       `db:"id" json:"id"`
	UserID           string      `db:"user_id" json:"user_id"`
	Complete         bool        `db:"complete" json:"complete"`
	Status           OrderStatus `db:"status" json:"status"`
	CreatedAt        string      `db:"created_at" json:"created_at"`
	PaymentReference string      `db:"payment_reference" json:"payment_reference,omitempty"`
	GatewayOrderID   string      `db:"gateway_order_id" json:"gateway_order_id,omitempty"`
	GatewayAmount    int64       `db:"gateway_amount" json:"gateway_amount,omitempty"`
}

// OrderItem is a line item joined with the product it refers to.
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity    int             `db:"quantity" json:"quantity"`
}

func (it OrderItem) TotalPrice() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
