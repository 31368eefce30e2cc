package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/models"
)

func decimalFromUint(q uint) decimal.Decimal { return decimal.NewFromInt(int64(q)) }

type GormRepo struct {
	DB *gorm.DB
}

// CreateFromCart materializes the order and its line snapshots and clears
// the originating cart, all in one transaction. The cart delete runs first
// and its row count is checked: a concurrent placement that already emptied
// the cart makes this transaction fail with ErrEmptyCart instead of
// producing a second order from the same lines.
func (r *GormRepo) CreateFromCart(ctx context.Context, o *models.Order, lines []models.CartItem, ownerKey string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("owner_key = ?", ownerKey).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrEmptyCart
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			var p models.Product
			if err := tx.First(&p, l.ProductID).Error; err != nil {
				return fmt.Errorf("product %d: %w", l.ProductID, err)
			}
			items = append(items, models.OrderItem{
				ProductID:   l.ProductID,
				ProductName: p.Name,
				ProductSKU:  p.SKU,
				Quantity:    l.Quantity,
				Size:        l.Size,
				Color:       l.Color,
				Price:       l.Price,
				Total:       l.Price.Mul(decimalFromUint(l.Quantity)),
			})
		}
		o.Items = items

		return tx.Create(o).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Where("order_number = ?", number).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListByUser(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := q.Preload("Items").Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// AdminFilters narrows the back-office order listing.
type AdminFilters struct {
	Status        string
	PaymentStatus string
	Search        string
}

func (r *GormRepo) AdminList(ctx context.Context, f AdminFilters, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.Search != "" {
		q = q.Where("order_number LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}
