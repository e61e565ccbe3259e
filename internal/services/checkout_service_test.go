package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/services"
)

type fakeGateway struct {
	secret  string
	created []payment.OrderRequest
	fail    error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.RemoteOrder, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	g.created = append(g.created, req)
	return &payment.RemoteOrder{ID: "order_remote_1", Amount: req.Amount, Currency: req.Currency, Status: "created"}, nil
}

func (g *fakeGateway) VerifyPayment(orderRef, paymentRef, signature string) error {
	return payment.Verify(g.secret, orderRef, paymentRef, signature)
}

func (g *fakeGateway) KeyID() string { return "key_test" }

func TestCheckoutWithoutGateway(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cart := services.NewCartService(db)
	checkout := services.NewCheckoutService(db, nil, "INR")

	_, err := cart.Add(ctx, "u-alice", 1)
	require.NoError(t, err)

	cc, err := checkout.BeginCheckout(ctx, "u-alice")
	require.NoError(t, err)
	require.False(t, cc.Active)
	require.Empty(t, cc.GatewayOrderID)
	require.Equal(t, "118.00", cc.Totals.GrandTotal.StringFixed(2))
}

func TestCheckoutCreatesRemoteOrderInMinorUnits(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cart := services.NewCartService(db)
	gw := &fakeGateway{secret: "s3cret"}
	checkout := services.NewCheckoutService(db, gw, "INR")

	for i := 0; i < 3; i++ {
		_, err := cart.Add(ctx, "u-alice", 1)
		require.NoError(t, err)
	}

	cc, err := checkout.BeginCheckout(ctx, "u-alice")
	require.NoError(t, err)
	require.True(t, cc.Active)
	require.Equal(t, "order_remote_1", cc.GatewayOrderID)
	require.Equal(t, int64(35400), cc.Amount)
	require.Equal(t, "key_test", cc.KeyID)
	require.Len(t, gw.created, 1)
	require.Equal(t, int64(35400), gw.created[0].Amount)
	require.Equal(t, "INR", gw.created[0].Currency)

	d, err := cart.OpenOrder(ctx, "u-alice")
	require.NoError(t, err)
	require.Equal(t, "order_remote_1", d.Order.GatewayOrderID)
	require.Equal(t, int64(35400), d.Order.GatewayAmount)
}

func TestCheckoutEmptyCartWithGateway(t *testing.T) {
	db := memdb(t)
	checkout := services.NewCheckoutService(db, &fakeGateway{}, "INR")

	_, err := checkout.BeginCheckout(context.Background(), "u-alice")
	require.ErrorIs(t, err, services.ErrBadRequest)
}

func TestCheckoutGatewayFailure(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	_, err := services.NewCartService(db).Add(ctx, "u-alice", 1)
	require.NoError(t, err)

	checkout := services.NewCheckoutService(db, &fakeGateway{fail: errors.New("connection refused")}, "INR")
	_, err = checkout.BeginCheckout(ctx, "u-alice")
	require.ErrorIs(t, err, services.ErrGateway)
}

func TestConfirmPaymentWithoutGateway(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cart := services.NewCartService(db)
	checkout := services.NewCheckoutService(db, nil, "INR")

	d, err := cart.Add(ctx, "u-alice", 1)
	require.NoError(t, err)
	orderID := d.Order.ID

	paid, err := checkout.ConfirmPayment(ctx, services.ConfirmRequest{
		OrderID: itoa(orderID),
		UserID:  "u-alice",
	})
	require.NoError(t, err)
	require.True(t, paid.Order.Complete)
	require.Equal(t, domain.StatusPaid, paid.Order.Status)
	require.Equal(t, domain.PlaceholderPaymentRef, paid.Order.PaymentReference)

	// idempotent on repeat
	again, err := checkout.ConfirmPayment(ctx, services.ConfirmRequest{OrderID: itoa(orderID), UserID: "u-alice", GatewayPaymentID: "pay_other"})
	require.NoError(t, err)
	require.Equal(t, domain.PlaceholderPaymentRef, again.Order.PaymentReference)

	// the next cart is a new order
	next, err := cart.OpenOrder(ctx, "u-alice")
	require.NoError(t, err)
	require.NotEqual(t, orderID, next.Order.ID)
	require.Empty(t, next.Items)
}

func TestConfirmPaymentErrors(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cart := services.NewCartService(db)
	checkout := services.NewCheckoutService(db, nil, "INR")

	d, err := cart.Add(ctx, "u-alice", 1)
	require.NoError(t, err)

	_, err = checkout.ConfirmPayment(ctx, services.ConfirmRequest{UserID: "u-alice"})
	require.ErrorIs(t, err, services.ErrBadRequest)

	_, err = checkout.ConfirmPayment(ctx, services.ConfirmRequest{OrderID: itoa(d.Order.ID), UserID: "u-bob"})
	require.ErrorIs(t, err, services.ErrNotFound)

	_, err = checkout.ConfirmPayment(ctx, services.ConfirmRequest{OrderID: "abc", UserID: "u-alice"})
	require.ErrorIs(t, err, services.ErrNotFound)

	// bob's attempt changed nothing
	open, err := cart.OpenOrder(ctx, "u-alice")
	require.NoError(t, err)
	require.Equal(t, d.Order.ID, open.Order.ID)
	require.Equal(t, domain.StatusPending, open.Order.Status)
}

func TestConfirmPaymentVerifiesSignature(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cart := services.NewCartService(db)
	gw := &fakeGateway{secret: "s3cret"}
	checkout := services.NewCheckoutService(db, gw, "INR")

	_, err := cart.Add(ctx, "u-alice", 1)
	require.NoError(t, err)
	cc, err := checkout.BeginCheckout(ctx, "u-alice")
	require.NoError(t, err)
	orderID := itoa(cc.Order.Order.ID)

	_, err = checkout.ConfirmPayment(ctx, services.ConfirmRequest{
		OrderID: orderID, UserID: "u-alice",
		GatewayOrderID: cc.GatewayOrderID, GatewayPaymentID: "pay_1", Signature: "forged",
	})
	require.ErrorIs(t, err, services.ErrBadRequest)

	_, err = checkout.ConfirmPayment(ctx, services.ConfirmRequest{
		OrderID: orderID, UserID: "u-alice",
		GatewayOrderID: "order_someone_else", GatewayPaymentID: "pay_1",
		Signature: payment.Sign("s3cret", "order_someone_else", "pay_1"),
	})
	require.ErrorIs(t, err, services.ErrBadRequest)

	paid, err := checkout.ConfirmPayment(ctx, services.ConfirmRequest{
		OrderID: orderID, UserID: "u-alice",
		GatewayOrderID: cc.GatewayOrderID, GatewayPaymentID: "pay_1",
		Signature: payment.Sign("s3cret", cc.GatewayOrderID, "pay_1"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, paid.Order.Status)
	require.Equal(t, "pay_1", paid.Order.PaymentReference)
}

func TestConfirmPaymentRequiresChargedAmount(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cart := services.NewCartService(db)
	gw := &fakeGateway{secret: "s3cret"}
	checkout := services.NewCheckoutService(db, gw, "INR")

	_, err := cart.Add(ctx, "u-alice", 4)
	require.NoError(t, err)
	cc, err := checkout.BeginCheckout(ctx, "u-alice")
	require.NoError(t, err)
	require.Equal(t, int64(1179), cc.Amount)

	_, err = cart.Add(ctx, "u-alice", 3)
	require.NoError(t, err)

	confirm := services.ConfirmRequest{
		OrderID: itoa(cc.Order.Order.ID), UserID: "u-alice",
		GatewayOrderID: cc.GatewayOrderID, GatewayPaymentID: "pay_1",
		Signature: payment.Sign("s3cret", cc.GatewayOrderID, "pay_1"),
	}
	_, err = checkout.ConfirmPayment(ctx, confirm)
	require.ErrorIs(t, err, services.ErrBadRequest)

	open, err := cart.OpenOrder(ctx, "u-alice")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, open.Order.Status)

	// checking out again charges the new total
	cc, err = checkout.BeginCheckout(ctx, "u-alice")
	require.NoError(t, err)
	require.Equal(t, domain.MinorUnits(open.GrandTotal()), cc.Amount)
	paid, err := checkout.ConfirmPayment(ctx, services.ConfirmRequest{
		OrderID: itoa(cc.Order.Order.ID), UserID: "u-alice",
		GatewayOrderID: cc.GatewayOrderID, GatewayPaymentID: "pay_2",
		Signature: payment.Sign("s3cret", cc.GatewayOrderID, "pay_2"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, paid.Order.Status)
}

func TestConfirmPaymentMalformedRefs(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	checkout := services.NewCheckoutService(db, nil, "INR")
	d, err := services.NewCartService(db).Add(ctx, "u-bob", 1)
	require.NoError(t, err)

	bad := services.ConfirmRequest{OrderID: itoa(d.Order.ID), GatewayPaymentID: "<script>"}

	bad.UserID = "u-alice"
	_, err = checkout.ConfirmPayment(ctx, bad)
	require.ErrorIs(t, err, services.ErrNotFound)

	bad.UserID = "u-bob"
	_, err = checkout.ConfirmPayment(ctx, bad)
	require.ErrorIs(t, err, services.ErrBadRequest)
}

func TestCancelOrder(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	cart := services.NewCartService(db)
	checkout := services.NewCheckoutService(db, nil, "INR")

	_, err := checkout.CancelOrder(ctx, "u-alice")
	require.ErrorIs(t, err, services.ErrNotFound)

	d, err := cart.Add(ctx, "u-alice", 1)
	require.NoError(t, err)

	cancelled, err := checkout.CancelOrder(ctx, "u-alice")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Order.Status)
	require.True(t, cancelled.Order.Complete)

	_, err = checkout.ConfirmPayment(ctx, services.ConfirmRequest{OrderID: itoa(d.Order.ID), UserID: "u-alice"})
	require.ErrorIs(t, err, services.ErrBadRequest)

	next, err := cart.OpenOrder(ctx, "u-alice")
	require.NoError(t, err)
	require.NotEqual(t, d.Order.ID, next.Order.ID)
}
