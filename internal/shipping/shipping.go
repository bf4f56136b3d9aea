// shipping.go

package shipping

import (
	"time"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/store"
)

const ratesCollection = "shipping_rates"

type Rate struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Region        string    `json:"region"`
	AmountCents   int64     `json:"amountCents"`
	Currency      string    `json:"currency"`
	EstimatedDays int       `json:"estimatedDays,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Rates struct {
	store *store.Store
}

func NewRates(st *store.Store) *Rates {
	return &Rates{store: st}
}

func (r *Rates) All() ([]Rate, error) {
	var rates []Rate
	if err := r.store.Read(ratesCollection, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *Rates) Active() ([]Rate, error) {
	rates, err := r.All()
	if err != nil {
		return nil, err
	}

	active := make([]Rate, 0, len(rates))
	for _, rate := range rates {
		if rate.Active {
			active = append(active, rate)
		}
	}
	return active, nil
}

func (r *Rates) FindByID(id int) (*Rate, error) {
	rates, err := r.All()
	if err != nil {
		return nil, err
	}
	for i := range rates {
		if rates[i].ID == id {
			return &rates[i], nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *Rates) Create(rate *Rate) error {
	rate.CreatedAt = time.Now().UTC()

	var rates []Rate
	return r.store.Update(ratesCollection, &rates, func() error {
		ids := make([]int, 0, len(rates))
		for i := range rates {
			ids = append(ids, rates[i].ID)
		}
		rate.ID = store.NextID(ids)
		rates = append(rates, *rate)
		return nil
	})
}

func (r *Rates) Save(rate *Rate) error {
	var rates []Rate
	return r.store.Update(ratesCollection, &rates, func() error {
		for i := range rates {
			if rates[i].ID == rate.ID {
				rates[i] = *rate
				return nil
			}
		}
		return core.ErrNotFound
	})
}

func (r *Rates) Delete(id int) error {
	var rates []Rate
	return r.store.Update(ratesCollection, &rates, func() error {
		for i := range rates {
			if rates[i].ID == id {
				rates = append(rates[:i], rates[i+1:]...)
				return nil
			}
		}
		return core.ErrNotFound
	})
}
