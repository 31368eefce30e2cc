package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) GetCart(ctx context.Context, owner Owner) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("owner_key = ?", owner.Key()).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddLine performs the find-or-increment upsert: an atomic quantity
// increment first, an insert when no row matched. A concurrent insert
// losing that race trips the (owner, product, size, color) unique index,
// after which the increment lands on the winner's row. Each step is a
// single atomic statement, so no enclosing transaction is needed.
func (r *GormRepo) AddLine(ctx context.Context, item *models.CartItem) error {
	db := r.DB.WithContext(ctx)
	for range 2 {
		incremented, err := r.increment(db, item)
		if err != nil || incremented {
			return err
		}

		err = db.Create(item).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		item.ID = 0
	}
	_, err := r.increment(db, item)
	return err
}

func (r *GormRepo) increment(tx *gorm.DB, item *models.CartItem) (bool, error) {
	res := tx.Model(&models.CartItem{}).
		Where("owner_key = ? AND product_id = ? AND size = ? AND color = ?",
			item.OwnerKey, item.ProductID, item.Size, item.Color).
		Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, tx.
		Where("owner_key = ? AND product_id = ? AND size = ? AND color = ?",
			item.OwnerKey, item.ProductID, item.Size, item.Color).
		First(item).Error
}

func (r *GormRepo) GetLine(ctx context.Context, lineID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).First(&item, lineID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) SetQuantity(ctx context.Context, lineID uint, quantity uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, lineID).Error; err != nil {
			return err
		}
		return tx.Model(&item).Update("quantity", quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveLine deletes the line only when it belongs to owner; a zero row
// count covers both "never existed" and "not yours".
func (r *GormRepo) RemoveLine(ctx context.Context, owner Owner, lineID uint) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND owner_key = ?", lineID, owner.Key()).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteAll(ctx context.Context, owner Owner) error {
	return r.DB.WithContext(ctx).
		Where("owner_key = ?", owner.Key()).
		Delete(&models.CartItem{}).Error
}
