package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type Service struct {
	Repo *GormRepo
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.Repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %q: %w", slug, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, f ListFilters, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

func (s *Service) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("name required: %w", ErrValidation)
	}
	if p.SKU == "" {
		return fmt.Errorf("sku required: %w", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.Status == "" {
		p.Status = "active"
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("sku or slug already taken: %w", ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Service) PatchProduct(ctx context.Context, id uint, req PatchRequest) (*models.Product, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}

	p, err := s.Repo.PatchProduct(ctx, id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.Name == "" {
		return fmt.Errorf("name required: %w", ErrValidation)
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("slug already taken: %w", ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Service) PatchCategory(ctx context.Context, id uint, req CategoryPatch) (*models.Category, error) {
	if req.Name != nil && *req.Name == "" {
		return nil, fmt.Errorf("name required: %w", ErrValidation)
	}

	c, err := s.Repo.PatchCategory(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, fmt.Errorf("slug already taken: %w", ErrConflict)
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

// Slugify reduces a display name to a URL slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
