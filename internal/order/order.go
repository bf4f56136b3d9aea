// order.go

package order

import (
	"time"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/store"
)

const ordersCollection = "orders"

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Order contact fields hold cipher envelopes, same as identity
// records. Totals are computed from the catalog at checkout time.
type Order struct {
	ID            int       `json:"id"`
	UserID        int       `json:"userId,omitempty"`
	CustomerName  string    `json:"customerName"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Items         []Item    `json:"items"`
	SubtotalCents int64     `json:"subtotalCents"`
	ShippingCents int64     `json:"shippingCents"`
	TotalCents    int64     `json:"totalCents"`
	Currency      string    `json:"currency"`
	ShippingRate  string    `json:"shippingRate,omitempty"`
	Address       string    `json:"address,omitempty"`
	Status        string    `json:"status"`
	PaymentRef    string    `json:"paymentRef,omitempty"`
	PaymentNote   string    `json:"paymentNote,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Item struct {
	ProductID  int    `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
}

// validTransitions holds the forward edges of the order lifecycle.
// cancelled is reachable from any non-terminal state.
var validTransitions = map[string][]string{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered, StatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Orders struct {
	store *store.Store
}

func NewOrders(st *store.Store) *Orders {
	return &Orders{store: st}
}

func (o *Orders) All() ([]Order, error) {
	var orders []Order
	if err := o.store.Read(ordersCollection, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *Orders) FindByID(id int) (*Order, error) {
	orders, err := o.All()
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, core.ErrNotFound
}

func (o *Orders) FindByUser(userID int) ([]Order, error) {
	orders, err := o.All()
	if err != nil {
		return nil, err
	}

	mine := make([]Order, 0)
	for _, ord := range orders {
		if ord.UserID == userID {
			mine = append(mine, ord)
		}
	}
	return mine, nil
}

func (o *Orders) Create(order *Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	var orders []Order
	return o.store.Update(ordersCollection, &orders, func() error {
		ids := make([]int, 0, len(orders))
		for i := range orders {
			ids = append(ids, orders[i].ID)
		}
		order.ID = store.NextID(ids)
		orders = append(orders, *order)
		return nil
	})
}

func (o *Orders) Save(order *Order) error {
	order.UpdatedAt = time.Now().UTC()

	var orders []Order
	return o.store.Update(ordersCollection, &orders, func() error {
		for i := range orders {
			if orders[i].ID == order.ID {
				orders[i] = *order
				return nil
			}
		}
		return core.ErrNotFound
	})
}
