// handler.go

package shipping

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukalabs/duka-server/internal/core"
)

type Handler struct {
	rates     *Rates
	validator *validator.Validate
}

func NewHandler(rates *Rates) *Handler {
	return &Handler{
		rates:     rates,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterStoreRoutes(r chi.Router) {
	r.Get("/shipping-rates", h.ListActive)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/shipping-rates", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Post("/", h.Create)
		r.Put("/{rateID}", h.Update)
		r.Delete("/{rateID}", h.Delete)
	})
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.Active()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, rates)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.All()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, rates)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	rate := req.toRate()
	if err := h.rates.Create(&rate); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, rate)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "rateID"))
	if err != nil {
		core.BadRequest(w, "invalid rate id")
		return
	}

	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	existing, err := h.rates.FindByID(id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("shipping rate"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	rate := req.toRate()
	rate.ID = existing.ID
	rate.CreatedAt = existing.CreatedAt

	if err := h.rates.Save(&rate); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, rate)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "rateID"))
	if err != nil {
		core.BadRequest(w, "invalid rate id")
		return
	}

	if err := h.rates.Delete(id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("shipping rate"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

type RateRequest struct {
	Name          string `json:"name"          validate:"required,min=1,max=100"`
	Region        string `json:"region"        validate:"required,min=1,max=100"`
	AmountCents   int64  `json:"amountCents"   validate:"gte=0"`
	Currency      string `json:"currency"      validate:"omitempty,len=3,uppercase"`
	EstimatedDays int    `json:"estimatedDays" validate:"gte=0,lte=90"`
	Active        bool   `json:"active"`
}

func (req RateRequest) toRate() Rate {
	currency := req.Currency
	if currency == "" {
		currency = "KES"
	}
	return Rate{
		Name:          req.Name,
		Region:        req.Region,
		AmountCents:   req.AmountCents,
		Currency:      currency,
		EstimatedDays: req.EstimatedDays,
		Active:        req.Active,
	}
}
