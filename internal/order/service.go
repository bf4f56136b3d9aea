// service.go

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dukalabs/duka-server/internal/catalog"
	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/email"
	"github.com/dukalabs/duka-server/internal/payment"
	"github.com/dukalabs/duka-server/internal/shipping"
)

var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrProductInactive   = errors.New("product not available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrBadTransition     = errors.New("invalid status transition")
)

type Service struct {
	orders  *Orders
	catalog *catalog.Catalog
	rates   *shipping.Rates
	cipher  *core.FieldCipher
	gateway payment.Gateway
	mailer  email.Mailer
}

func NewService(
	orders *Orders,
	cat *catalog.Catalog,
	rates *shipping.Rates,
	cipher *core.FieldCipher,
	gateway payment.Gateway,
	mailer email.Mailer,
) *Service {
	return &Service{
		orders:  orders,
		catalog: cat,
		rates:   rates,
		cipher:  cipher,
		gateway: gateway,
		mailer:  mailer,
	}
}

// Checkout prices the cart against the live catalog, creates a
// pending order, attempts the gateway charge, and sends the receipt
// best-effort. The order is created even when the charge fails; its
// payment state tells the client what happened.
func (s *Service) Checkout(
	ctx context.Context,
	userID int,
	req CheckoutRequest,
) (*OrderView, error) {
	items, subtotal, currency, err := s.priceItems(req.Items)
	if err != nil {
		return nil, err
	}

	var shippingCents int64
	var rateName string
	if req.ShippingRateID != 0 {
		rate, err := s.rates.FindByID(req.ShippingRateID)
		if err != nil || !rate.Active {
			return nil, core.ValidationError("unknown shipping rate")
		}
		shippingCents = rate.AmountCents
		rateName = rate.Name
	}

	normPhone := core.NormalizePhone(req.Phone)
	normEmail := core.NormalizeEmail(req.Email)

	encPhone, err := s.cipher.Encrypt(normPhone)
	if err != nil {
		return nil, fmt.Errorf("encrypt phone: %w", err)
	}
	encEmail := ""
	if normEmail != "" {
		encEmail, err = s.cipher.Encrypt(normEmail)
		if err != nil {
			return nil, fmt.Errorf("encrypt email: %w", err)
		}
	}

	ord := &Order{
		UserID:        userID,
		CustomerName:  req.CustomerName,
		Email:         encEmail,
		Phone:         encPhone,
		Items:         items,
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		TotalCents:    subtotal + shippingCents,
		Currency:      currency,
		ShippingRate:  rateName,
		Address:       req.Address,
		Status:        StatusPending,
	}

	if err := s.orders.Create(ord); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, item := range items {
		if err := s.catalog.AdjustStock(item.ProductID, -item.Quantity); err != nil {
			slog.Warn("stock adjustment failed",
				"orderId", ord.ID,
				"productId", item.ProductID,
				"error", err,
			)
		}
	}

	s.charge(ctx, ord, normPhone)

	if normEmail != "" {
		s.sendReceipt(ord, normEmail)
	}

	return s.view(ord), nil
}

func (s *Service) priceItems(
	reqItems []ItemRequest,
) ([]Item, int64, string, error) {
	items := make([]Item, 0, len(reqItems))
	var subtotal int64
	currency := ""

	for _, ri := range reqItems {
		product, err := s.catalog.ProductByID(ri.ProductID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, 0, "", ErrUnknownProduct
			}
			return nil, 0, "", fmt.Errorf("load product: %w", err)
		}
		if !product.Active {
			return nil, 0, "", ErrProductInactive
		}
		if product.Stock < ri.Quantity {
			return nil, 0, "", ErrInsufficientStock
		}
		if currency == "" {
			currency = product.Currency
		}

		items = append(items, Item{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   ri.Quantity,
		})
		subtotal += product.PriceCents * int64(ri.Quantity)
	}

	return items, subtotal, currency, nil
}

// charge runs the gateway call and records the outcome on the order.
// A gateway failure leaves the order pending with a note, it is not a
// checkout failure.
func (s *Service) charge(ctx context.Context, ord *Order, phone string) {
	result, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		AmountCents: ord.TotalCents,
		Currency:    ord.Currency,
		Phone:       phone,
		Reference:   fmt.Sprintf("order-%d-%s", ord.ID, uuid.NewString()[:8]),
	})
	if err != nil {
		ord.PaymentNote = "charge failed, payment pending"
		slog.Warn("gateway charge failed", "orderId", ord.ID, "error", err)
	} else {
		ord.Status = StatusPaid
		ord.PaymentRef = result.GatewayRef
	}

	if err := s.orders.Save(ord); err != nil {
		slog.Error("persist payment outcome failed",
			"orderId", ord.ID, "error", err)
	}
}

func (s *Service) sendReceipt(ord *Order, to string) {
	lines := make([]email.ReceiptLine, 0, len(ord.Items))
	for _, item := range ord.Items {
		lines = append(lines, email.ReceiptLine{
			Name:       item.Name,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		})
	}

	err := s.mailer.SendOrderReceipt(to, email.OrderReceipt{
		OrderID:      ord.ID,
		CustomerName: ord.CustomerName,
		Lines:        lines,
		TotalCents:   ord.TotalCents,
		Currency:     ord.Currency,
	})
	if err != nil {
		slog.Warn("receipt email failed", "orderId", ord.ID, "error", err)
	}
}

func (s *Service) UserOrders(userID int) ([]OrderView, error) {
	orders, err := s.orders.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.views(orders), nil
}

func (s *Service) UserOrder(userID, orderID int) (*OrderView, error) {
	ord, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if ord.UserID != userID {
		// Another customer's order looks like it does not exist.
		return nil, core.ErrNotFound
	}
	return s.view(ord), nil
}

func (s *Service) AllOrders() ([]OrderView, error) {
	orders, err := s.orders.All()
	if err != nil {
		return nil, err
	}
	return s.views(orders), nil
}

func (s *Service) OrderByID(orderID int) (*OrderView, error) {
	ord, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	return s.view(ord), nil
}

func (s *Service) UpdateStatus(orderID int, status string) (*OrderView, error) {
	ord, err := s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(ord.Status, status) {
		return nil, ErrBadTransition
	}

	ord.Status = status
	if err := s.orders.Save(ord); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	return s.view(ord), nil
}

func (s *Service) view(ord *Order) *OrderView {
	return &OrderView{
		ID:            ord.ID,
		UserID:        ord.UserID,
		CustomerName:  ord.CustomerName,
		Email:         s.cipher.Decrypt(ord.Email),
		Phone:         s.cipher.Decrypt(ord.Phone),
		Items:         ord.Items,
		SubtotalCents: ord.SubtotalCents,
		ShippingCents: ord.ShippingCents,
		TotalCents:    ord.TotalCents,
		Currency:      ord.Currency,
		ShippingRate:  ord.ShippingRate,
		Address:       ord.Address,
		Status:        ord.Status,
		PaymentRef:    ord.PaymentRef,
		PaymentNote:   ord.PaymentNote,
		CreatedAt:     ord.CreatedAt,
		UpdatedAt:     ord.UpdatedAt,
	}
}

func (s *Service) views(orders []Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, *s.view(&orders[i]))
	}
	return views
}
