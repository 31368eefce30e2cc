package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListFilters narrows the storefront product listing.
type ListFilters struct {
	CategoryID uint
	Featured   bool
	Status     string
}

func (r *GormRepo) ListProducts(ctx context.Context, f ListFilters, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// PatchRequest carries partial product updates; nil fields stay untouched.
type PatchRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Price       *decimal.Decimal     `json:"price"`
	SalePrice   *decimal.NullDecimal `json:"sale_price"`
	Stock       *int                 `json:"stock"`
	Status      *string              `json:"status"`
	Featured    *bool                `json:"featured"`
	Sizes       *models.StringList   `json:"sizes"`
	Colors      *models.StringList   `json:"colors"`
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uint, req PatchRequest) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.SalePrice != nil {
		p.SalePrice = *req.SalePrice
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
		p.InStock = *req.Stock > 0
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.Sizes != nil {
		p.Sizes = *req.Sizes
	}
	if req.Colors != nil {
		p.Colors = *req.Colors
	}

	if err := r.DB.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

// CategoryPatch carries partial category updates; nil fields stay untouched.
type CategoryPatch struct {
	Name   *string `json:"name"`
	Slug   *string `json:"slug"`
	Active *bool   `json:"active"`
}

func (r *GormRepo) PatchCategory(ctx context.Context, id uint, req CategoryPatch) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Slug != nil {
		c.Slug = *req.Slug
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := r.DB.WithContext(ctx).Select("name", "slug", "active").Save(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
