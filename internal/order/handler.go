// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterStoreRoutes mounts checkout and the customer's own orders.
// Checkout works for guests too, hence the optional session.
func (h *Handler) RegisterStoreRoutes(
	r chi.Router,
	requireUser func(http.Handler) http.Handler,
) {
	r.Post("/checkout", h.Checkout)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/orders", h.MyOrders)
		r.Get("/orders/{orderID}", h.MyOrder)
	})
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Get("/{orderID}", h.GetAny)
		r.Put("/{orderID}/status", h.UpdateStatus)
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if !core.IsValidPhone(req.Phone) {
		core.BadRequest(w, "invalid phone format")
		return
	}
	if req.Email != "" && !core.IsValidEmail(req.Email) {
		core.BadRequest(w, "invalid email format")
		return
	}

	userID := 0
	if claims := middleware.UserClaims(r.Context()); claims != nil {
		userID = claims.Subject
	}

	view, err := h.service.Checkout(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownProduct),
			errors.Is(err, ErrProductInactive),
			errors.Is(err, ErrInsufficientStock):
			core.BadRequest(w, err.Error())
		case core.IsAppError(err):
			core.JSONError(w, err)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, view)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.UserClaims(r.Context())
	if claims == nil {
		core.JSONError(w, core.UnauthorizedError(""))
		return
	}

	views, err := h.service.UserOrders(claims.Subject)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, views)
}

func (h *Handler) MyOrder(w http.ResponseWriter, r *http.Request) {
	claims := middleware.UserClaims(r.Context())
	if claims == nil {
		core.JSONError(w, core.UnauthorizedError(""))
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "orderID"))
	if err != nil {
		core.BadRequest(w, "invalid order id")
		return
	}

	view, err := h.service.UserOrder(claims.Subject, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("order"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, view)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.AllOrders()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, views)
}

func (h *Handler) GetAny(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "orderID"))
	if err != nil {
		core.BadRequest(w, "invalid order id")
		return
	}

	view, err := h.service.OrderByID(id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("order"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, view)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "orderID"))
	if err != nil {
		core.BadRequest(w, "invalid order id")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	view, err := h.service.UpdateStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.JSONError(w, core.NotFoundError("order"))
		case errors.Is(err, ErrBadTransition):
			core.BadRequest(w, err.Error())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, view)
}

type CheckoutRequest struct {
	CustomerName   string        `json:"customerName"   validate:"required,min=1,max=100"`
	Email          string        `json:"email"          validate:"omitempty,max=255"`
	Phone          string        `json:"phone"          validate:"required,max=32"`
	Address        string        `json:"address"        validate:"omitempty,max=500"`
	ShippingRateID int           `json:"shippingRateId" validate:"omitempty,gt=0"`
	Items          []ItemRequest `json:"items"          validate:"required,min=1,dive"`
}

type ItemRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
	Quantity  int `json:"quantity"  validate:"required,gt=0,lte=100"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

// OrderView is the decrypted response shape. Stored envelopes never
// leave the server.
type OrderView struct {
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
