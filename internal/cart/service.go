package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/models"
)

// ProductGetter is the slice of the catalog the cart needs: price capture
// on add-to-cart.
type ProductGetter interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

type Service struct {
	Repo     *GormRepo
	Products ProductGetter
}

func (s *Service) GetCart(ctx context.Context, owner Owner) ([]models.CartItem, error) {
	if !owner.Valid() {
		return nil, ErrNoOwner
	}
	return s.Repo.GetCart(ctx, owner)
}

// AddLine captures the product's current effective price and either
// increments the matching line or inserts a new one.
func (s *Service) AddLine(ctx context.Context, owner Owner, productID uint, quantity uint, size, color string) (*models.CartItem, error) {
	if !owner.Valid() {
		return nil, ErrNoOwner
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.Products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	item := &models.CartItem{
		OwnerKey:  owner.Key(),
		UserID:    owner.userIDPtr(),
		SessionID: owner.sessionIDPtr(),
		ProductID: product.ID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
		Price:     product.EffectivePrice(),
	}
	if err := s.Repo.AddLine(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) SetQuantity(ctx context.Context, owner Owner, lineID uint, quantity uint) (*models.CartItem, error) {
	if !owner.Valid() {
		return nil, ErrNoOwner
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	line, err := s.Repo.GetLine(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart line %d: %w", lineID, ErrNotFound)
		}
		return nil, err
	}
	if line.OwnerKey != owner.Key() {
		return nil, ErrForbidden
	}

	return s.Repo.SetQuantity(ctx, lineID, quantity)
}

func (s *Service) RemoveLine(ctx context.Context, owner Owner, lineID uint) error {
	if !owner.Valid() {
		return ErrNoOwner
	}
	if err := s.Repo.RemoveLine(ctx, owner, lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart line %d: %w", lineID, ErrNotFound)
		}
		return err
	}
	return nil
}
