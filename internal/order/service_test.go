// service_test.go

package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukalabs/duka-server/internal/catalog"
	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/email"
	"github.com/dukalabs/duka-server/internal/payment"
	"github.com/dukalabs/duka-server/internal/shipping"
	"github.com/dukalabs/duka-server/internal/store"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type fakeGateway struct {
	fail     bool
	requests []payment.ChargeRequest
}

func (g *fakeGateway) Charge(
	_ context.Context,
	req payment.ChargeRequest,
) (*payment.ChargeResult, error) {
	g.requests = append(g.requests, req)
	if g.fail {
		return nil, payment.ErrGatewayUnavailable
	}
	return &payment.ChargeResult{GatewayRef: "gw-123", Status: "ok"}, nil
}

type fakeMailer struct {
	sent []email.OrderReceipt
}

func (m *fakeMailer) SendOrderReceipt(_ string, r email.OrderReceipt) error {
	m.sent = append(m.sent, r)
	return nil
}

type fixture struct {
	service *Service
	catalog *catalog.Catalog
	gateway *fakeGateway
	mailer  *fakeMailer
	rates   *shipping.Rates
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	cipher, err := core.NewFieldCipher(testKeyHex)
	require.NoError(t, err)

	cat := catalog.New(st)
	rates := shipping.NewRates(st)
	gateway := &fakeGateway{}
	mailer := &fakeMailer{}

	svc := NewService(NewOrders(st), cat, rates, cipher, gateway, mailer)

	return &fixture{
		service: svc,
		catalog: cat,
		gateway: gateway,
		mailer:  mailer,
		rates:   rates,
	}
}

func (f *fixture) seedProduct(t *testing.T, priceCents int64, stock int) *catalog.Product {
	t.Helper()

	product := catalog.Product{
		Name:       "Kanga",
		PriceCents: priceCents,
		Currency:   "KES",
		Stock:      stock,
		Active:     true,
	}
	require.NoError(t, f.catalog.CreateProduct(&product))
	return &product
}

func TestCheckoutComputesTotalsServerSide(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, 1500, 10)

	rate := shipping.Rate{
		Name: "Nairobi", Region: "NBO", AmountCents: 300,
		Currency: "KES", Active: true,
	}
	require.NoError(t, f.rates.Create(&rate))

	view, err := f.service.Checkout(context.Background(), 0, CheckoutRequest{
		CustomerName:   "Jane",
		Phone:          "+254712345678",
		Email:          "jane@example.com",
		ShippingRateID: rate.ID,
		Items: []ItemRequest{
			{ProductID: product.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3000), view.SubtotalCents)
	assert.Equal(t, int64(300), view.ShippingCents)
	assert.Equal(t, int64(3300), view.TotalCents)
	assert.Equal(t, StatusPaid, view.Status)
	assert.Equal(t, "gw-123", view.PaymentRef)

	// The charge used the server-side total, not anything the client
	// could have supplied.
	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, int64(3300), f.gateway.requests[0].AmountCents)

	// Stock was decremented.
	stored, err := f.catalog.ProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Stock)

	// Receipt went out with the same total.
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, int64(3300), f.mailer.sent[0].TotalCents)
}

func TestCheckoutGatewayFailureLeavesOrderPending(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, 1000, 5)
	f.gateway.fail = true

	view, err := f.service.Checkout(context.Background(), 0, CheckoutRequest{
		CustomerName: "Jane",
		Phone:        "+254712345678",
		Items: []ItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, view.Status)
	assert.Empty(t, view.PaymentRef)
	assert.NotEmpty(t, view.PaymentNote)
}

func TestCheckoutRejectsBadItems(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, 1000, 1)

	_, err := f.service.Checkout(context.Background(), 0, CheckoutRequest{
		CustomerName: "Jane",
		Phone:        "+254712345678",
		Items:        []ItemRequest{{ProductID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = f.service.Checkout(context.Background(), 0, CheckoutRequest{
		CustomerName: "Jane",
		Phone:        "+254712345678",
		Items:        []ItemRequest{{ProductID: product.ID, Quantity: 5}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	inactive := catalog.Product{
		Name: "Hidden", PriceCents: 100, Currency: "KES", Stock: 5,
	}
	require.NoError(t, f.catalog.CreateProduct(&inactive))

	_, err = f.service.Checkout(context.Background(), 0, CheckoutRequest{
		CustomerName: "Jane",
		Phone:        "+254712345678",
		Items:        []ItemRequest{{ProductID: inactive.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductInactive)
}

func TestOrderContactIsEncryptedAtRest(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, 1000, 5)

	view, err := f.service.Checkout(context.Background(), 0, CheckoutRequest{
		CustomerName: "Jane",
		Phone:        "+254 712 345 678",
		Email:        "Jane@Example.COM",
		Items:        []ItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// The response view is decrypted and normalized.
	assert.Equal(t, "+254712345678", view.Phone)
	assert.Equal(t, "jane@example.com", view.Email)

	// The stored record holds envelopes.
	stored, err := f.service.orders.FindByID(view.ID)
	require.NoError(t, err)
	assert.True(t, core.IsEnvelope(stored.Phone))
	assert.True(t, core.IsEnvelope(stored.Email))
}

func TestUserOrdersScopedToOwner(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, 1000, 10)

	mine, err := f.service.Checkout(context.Background(), 7, CheckoutRequest{
		CustomerName: "Jane",
		Phone:        "+254712345678",
		Items:        []ItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.service.Checkout(context.Background(), 8, CheckoutRequest{
		CustomerName: "Phil",
		Phone:        "+254799999999",
		Items:        []ItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	orders, err := f.service.UserOrders(7)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)

	// Another customer's order reads as not found.
	_, err = f.service.UserOrder(8, mine.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, 1000, 5)
	f.gateway.fail = true

	view, err := f.service.Checkout(context.Background(), 0, CheckoutRequest{
		CustomerName: "Jane",
		Phone:        "+254712345678",
		Items:        []ItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, view.Status)

	// pending cannot jump straight to delivered.
	_, err = f.service.UpdateStatus(view.ID, StatusDelivered)
	assert.ErrorIs(t, err, ErrBadTransition)

	for _, status := range []string{StatusPaid, StatusShipped, StatusDelivered} {
		view, err = f.service.UpdateStatus(view.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, view.Status)
	}

	// delivered is terminal.
	_, err = f.service.UpdateStatus(view.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrBadTransition)

	var notFound error
	_, notFound = f.service.UpdateStatus(999, StatusPaid)
	assert.ErrorIs(t, notFound, core.ErrNotFound)
}
