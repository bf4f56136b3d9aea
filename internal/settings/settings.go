// settings.go

package settings

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/store"
)

const settingsCollection = "settings"

// Settings is a single public document, replaced wholesale by the
// back office. Nothing secret belongs in here.
type Settings struct {
	StoreName    string    `json:"storeName"`
	Tagline      string    `json:"tagline,omitempty"`
	Currency     string    `json:"currency"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	Address      string    `json:"address,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func defaults() Settings {
	return Settings{
		StoreName: "Duka",
		Currency:  "KES",
	}
}

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Get returns stored settings, falling back to defaults when the
// document has never been written.
func (s *Service) Get() (Settings, error) {
	var docs []Settings
	if err := s.store.Read(settingsCollection, &docs); err != nil {
		return Settings{}, err
	}
	if len(docs) == 0 {
		return defaults(), nil
	}
	return docs[0], nil
}

func (s *Service) Replace(settings Settings) (Settings, error) {
	settings.UpdatedAt = time.Now().UTC()
	if err := s.store.Write(settingsCollection, []Settings{settings}); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

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

func (h *Handler) RegisterStoreRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/settings", h.Replace)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, settings)
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	settings := Settings{
		StoreName:    req.StoreName,
		Tagline:      req.Tagline,
		Currency:     req.Currency,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	}

	saved, err := h.service.Replace(settings)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, saved)
}

type SettingsRequest struct {
	StoreName    string `json:"storeName"    validate:"required,min=1,max=100"`
	Tagline      string `json:"tagline"      validate:"omitempty,max=200"`
	Currency     string `json:"currency"     validate:"required,len=3,uppercase"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email,max=255"`
	ContactPhone string `json:"contactPhone" validate:"omitempty,max=32"`
	Address      string `json:"address"      validate:"omitempty,max=500"`
}
