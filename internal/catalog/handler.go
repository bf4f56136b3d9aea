// handler.go

package catalog

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
	catalog   *Catalog
	validator *validator.Validate
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{
		catalog:   catalog,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterStoreRoutes mounts the public read-only storefront surface.
func (h *Handler) RegisterStoreRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListActiveProducts)
		r.Get("/{productID}", h.GetProduct)
	})
	r.Get("/categories", h.ListCategories)
}

// RegisterAdminRoutes mounts the full CRUD surface for the back
// office, including inactive products.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListAllProducts)
		r.Post("/", h.CreateProduct)
		r.Put("/{productID}", h.UpdateProduct)
		r.Delete("/{productID}", h.DeleteProduct)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Put("/{categoryID}", h.UpdateCategory)
		r.Delete("/{categoryID}", h.DeleteCategory)
	})
}

func (h *Handler) ListActiveProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ActiveProducts()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, products)
}

func (h *Handler) ListAllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		core.BadRequest(w, "invalid product id")
		return
	}

	product, err := h.catalog.ProductByID(id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("product"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if req.CategoryID != 0 {
		if _, err := h.catalog.CategoryByID(req.CategoryID); err != nil {
			core.BadRequest(w, "unknown category")
			return
		}
	}

	product := req.toProduct()
	if err := h.catalog.CreateProduct(&product); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		core.BadRequest(w, "invalid product id")
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	existing, err := h.catalog.ProductByID(id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("product"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	product := req.toProduct()
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt

	if err := h.catalog.SaveProduct(&product); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, product)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		core.BadRequest(w, "invalid product id")
		return
	}

	if err := h.catalog.DeleteProduct(id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("product"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, categories)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	category := Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if err := h.catalog.CreateCategory(&category); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "categoryID"))
	if err != nil {
		core.BadRequest(w, "invalid category id")
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	existing, err := h.catalog.CategoryByID(id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("category"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	existing.Name = req.Name
	existing.Slug = req.Slug
	existing.Description = req.Description
	existing.SortOrder = req.SortOrder

	if err := h.catalog.SaveCategory(existing); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, existing)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "categoryID"))
	if err != nil {
		core.BadRequest(w, "invalid category id")
		return
	}

	if err := h.catalog.DeleteCategory(id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("category"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

type ProductRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=200"`
	Slug        string   `json:"slug"        validate:"omitempty,max=200,lowercase"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	PriceCents  int64    `json:"priceCents"  validate:"required,gt=0"`
	Currency    string   `json:"currency"    validate:"omitempty,len=3,uppercase"`
	CategoryID  int      `json:"categoryId"  validate:"omitempty,gt=0"`
	Images      []string `json:"images"      validate:"omitempty,dive,url"`
	Stock       int      `json:"stock"       validate:"gte=0"`
	Active      bool     `json:"active"`
}

func (req ProductRequest) toProduct() Product {
	currency := req.Currency
	if currency == "" {
		currency = "KES"
	}
	return Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    currency,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		Stock:       req.Stock,
		Active:      req.Active,
	}
}

type CategoryRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Slug        string `json:"slug"        validate:"omitempty,max=100,lowercase"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	SortOrder   int    `json:"sortOrder"   validate:"gte=0"`
}
