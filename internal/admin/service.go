package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/models"
	"github.com/avelkin/storefront/internal/order"
)

var (
	ErrNotFound = errors.New("not found")
	ErrBadRole  = errors.New("unknown role")
)

// Service is the back-office surface that does not belong to a single
// domain package: user administration and the cross-entity dashboard.
type Service struct {
	DB *gorm.DB
}

// UserFilters narrows the admin user listing. Search matches username or
// email.
type UserFilters struct {
	Search string
	Role   string
}

func (s *Service) ListUsers(ctx context.Context, f UserFilters, offset, limit int) (int64, []models.User, error) {
	q := s.DB.WithContext(ctx).Model(&models.User{})
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("username LIKE ? OR email LIKE ?", pattern, pattern)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var users []models.User
	if err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

// GetUser loads one user together with their latest orders.
func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, []models.Order, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var orders []models.Order
	if err := s.DB.WithContext(ctx).Where("user_id = ?", id).
		Order("created_at DESC").Limit(10).Find(&orders).Error; err != nil {
		return nil, nil, err
	}
	return &user, orders, nil
}

// UpdateRole switches a user between the customer and admin roles; any
// other role value is rejected.
func (s *Service) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	if role != "user" && role != "admin" {
		return nil, fmt.Errorf("role %q: %w", role, ErrBadRole)
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ProductSales is a dashboard row: units sold per product, from the
// denormalized order item snapshots.
type ProductSales struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Units       int64  `json:"units"`
}

type DashboardStats struct {
	TotalProducts   int64           `json:"total_products"`
	TotalOrders     int64           `json:"total_orders"`
	TotalCustomers  int64           `json:"total_customers"`
	TotalCategories int64           `json:"total_categories"`
	PendingOrders   int64           `json:"pending_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	RecentOrders    []models.Order  `json:"recent_orders"`
	TopProducts     []ProductSales  `json:"top_products"`
}

// Dashboard assembles the back-office overview: entity counts, paid
// revenue, the five most recent orders and the five best-selling products.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.DB.WithContext(ctx)
	stats := &DashboardStats{TotalRevenue: decimal.Zero}

	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", "user").
		Count(&stats.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Category{}).Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Where("status = ?", order.StatusPending.String()).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}

	row := db.Model(&models.Order{}).
		Where("payment_status = ?", order.PaymentPaid.String()).
		Select("COALESCE(SUM(total_amount), 0)").Row()
	if err := row.Scan(&stats.TotalRevenue); err != nil {
		return nil, err
	}

	if err := db.Preload("Items").Order("created_at DESC").Limit(5).
		Find(&stats.RecentOrders).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.OrderItem{}).
		Select("product_id, product_name, SUM(quantity) AS units").
		Group("product_id, product_name").
		Order("units DESC").Limit(5).
		Scan(&stats.TopProducts).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
