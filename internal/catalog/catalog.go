// catalog.go

package catalog

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/store"
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
)

// Prices are integer minor units (cents). Totals never touch floats.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	CategoryID  int       `json:"categoryId,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a name and collapses everything outside [a-z0-9]
// into single hyphens.
func Slugify(name string) string {
	slug := slugUnsafe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

type Catalog struct {
	store *store.Store
}

func New(st *store.Store) *Catalog {
	return &Catalog{store: st}
}

func (c *Catalog) Products() ([]Product, error) {
	var products []Product
	if err := c.store.Read(productsCollection, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ActiveProducts is the storefront view: inactive products exist only
// for the back office.
func (c *Catalog) ActiveProducts() ([]Product, error) {
	products, err := c.Products()
	if err != nil {
		return nil, err
	}

	active := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func (c *Catalog) ProductByID(id int) (*Product, error) {
	products, err := c.Products()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, core.ErrNotFound
}

func (c *Catalog) CreateProduct(product *Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}

	var products []Product
	return c.store.Update(productsCollection, &products, func() error {
		ids := make([]int, 0, len(products))
		for i := range products {
			ids = append(ids, products[i].ID)
		}
		product.ID = store.NextID(ids)
		products = append(products, *product)
		return nil
	})
}

func (c *Catalog) SaveProduct(product *Product) error {
	product.UpdatedAt = time.Now().UTC()
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}

	var products []Product
	return c.store.Update(productsCollection, &products, func() error {
		for i := range products {
			if products[i].ID == product.ID {
				products[i] = *product
				return nil
			}
		}
		return core.ErrNotFound
	})
}

func (c *Catalog) DeleteProduct(id int) error {
	var products []Product
	return c.store.Update(productsCollection, &products, func() error {
		for i := range products {
			if products[i].ID == id {
				products = append(products[:i], products[i+1:]...)
				return nil
			}
		}
		return core.ErrNotFound
	})
}

// AdjustStock applies a delta inside the collection lock so checkout
// decrements do not race each other.
func (c *Catalog) AdjustStock(id, delta int) error {
	var products []Product
	return c.store.Update(productsCollection, &products, func() error {
		for i := range products {
			if products[i].ID == id {
				next := products[i].Stock + delta
				if next < 0 {
					next = 0
				}
				products[i].Stock = next
				products[i].UpdatedAt = time.Now().UTC()
				return nil
			}
		}
		return core.ErrNotFound
	})
}

func (c *Catalog) Categories() ([]Category, error) {
	var categories []Category
	if err := c.store.Read(categoriesCollection, &categories); err != nil {
		return nil, err
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})
	return categories, nil
}

func (c *Catalog) CategoryByID(id int) (*Category, error) {
	categories, err := c.Categories()
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, core.ErrNotFound
}

func (c *Catalog) CreateCategory(category *Category) error {
	category.CreatedAt = time.Now().UTC()
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}

	var categories []Category
	return c.store.Update(categoriesCollection, &categories, func() error {
		ids := make([]int, 0, len(categories))
		for i := range categories {
			ids = append(ids, categories[i].ID)
		}
		category.ID = store.NextID(ids)
		categories = append(categories, *category)
		return nil
	})
}

func (c *Catalog) SaveCategory(category *Category) error {
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}

	var categories []Category
	return c.store.Update(categoriesCollection, &categories, func() error {
		for i := range categories {
			if categories[i].ID == category.ID {
				categories[i] = *category
				return nil
			}
		}
		return core.ErrNotFound
	})
}

func (c *Catalog) DeleteCategory(id int) error {
	var categories []Category
	return c.store.Update(categoriesCollection, &categories, func() error {
		for i := range categories {
			if categories[i].ID == id {
				categories = append(categories[:i], categories[i+1:]...)
				return nil
			}
		}
		return core.ErrNotFound
	})
}
