// handler.go

package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dukalabs/duka-server/internal/audit"
	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/identity"
	"github.com/dukalabs/duka-server/internal/middleware"
	"github.com/dukalabs/duka-server/internal/store"
)

// Handler manages admin accounts and exposes system stats. Every
// route here is super-admin only.
type Handler struct {
	admins    *identity.Admins
	store     *store.Store
	audit     *audit.Logger
	validator *validator.Validate
}

func NewHandler(
	admins *identity.Admins,
	st *store.Store,
	auditLog *audit.Logger,
) *Handler {
	return &Handler{
		admins:    admins,
		store:     st,
		audit:     auditLog,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	superAdminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(superAdminOnly)

		r.Route("/admins", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Put("/{adminID}", h.Update)
			r.Delete("/{adminID}", h.Delete)
		})

		r.Get("/stats", h.SystemStats)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.All()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	views := make([]AdminView, 0, len(admins))
	for i := range admins {
		views = append(views, toView(&admins[i]))
	}

	core.OK(w, views)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	admin := identity.Admin{
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Permissions: req.Permissions,
	}

	// An account created without a password stays unconfigured until
	// its first bootstrap-password login.
	if req.Password != "" {
		hash, err := core.HashPassword(req.Password)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}
		admin.PasswordHash = hash
	}

	if err := h.admins.Create(&admin); err != nil {
		if errors.Is(err, core.ErrDuplicateContact) {
			core.BadRequest(w, "an admin with this email already exists")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	actor := middleware.AdminClaims(r.Context())
	h.audit.Record(audit.EventAdminCreated,
		"adminId", admin.ID,
		"actorId", actor.Subject,
		"role", admin.Role,
	)

	core.Created(w, toView(&admin))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "adminID"))
	if err != nil {
		core.BadRequest(w, "invalid admin id")
		return
	}

	var req UpdateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	admin, err := h.admins.FindByID(id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("admin"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if req.Name != "" {
		admin.Name = req.Name
	}
	if req.Role != "" {
		admin.Role = req.Role
	}
	if req.Permissions != nil {
		admin.Permissions = req.Permissions
	}
	if req.Password != "" {
		hash, err := core.HashPassword(req.Password)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}
		admin.PasswordHash = hash
	}

	if err := h.admins.Save(admin); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toView(admin))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "adminID"))
	if err != nil {
		core.BadRequest(w, "invalid admin id")
		return
	}

	if err := h.admins.Delete(id); err != nil {
		switch {
		case errors.Is(err, identity.ErrLastSuperAdmin):
			core.BadRequest(w, "cannot delete the last super admin")
		case errors.Is(err, core.ErrNotFound):
			core.JSONError(w, core.NotFoundError("admin"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	actor := middleware.AdminClaims(r.Context())
	h.audit.Record(audit.EventAdminDeleted,
		"adminId", id,
		"actorId", actor.Subject,
	)

	core.NoContent(w)
}

func (h *Handler) SystemStats(w http.ResponseWriter, r *http.Request) {
	collections, err := h.store.CollectionStats()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	core.OK(w, SystemStatsResponse{
		Store: StoreStats{
			DataDir:     h.store.DataDir(),
			Collections: collections,
		},
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
			MemAlloc:     memStats.Alloc,
			MemSys:       memStats.Sys,
			NumGC:        memStats.NumGC,
		},
	})
}

func toView(admin *identity.Admin) AdminView {
	return AdminView{
		ID:          admin.ID,
		Name:        admin.Name,
		Email:       admin.Email,
		Role:        admin.Role,
		Permissions: admin.Permissions,
		Configured:  admin.IsConfigured(),
		CreatedAt:   admin.CreatedAt,
	}
}
