package admin

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	))
	return &Service{DB: db}, db
}

func seedUser(t *testing.T, db *gorm.DB, username, email, role string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, number, status, payStatus, total string, items ...models.OrderItem) *models.Order {
	t.Helper()
	o := &models.Order{
		OrderNumber:    number,
		UserID:         userID,
		Subtotal:       decimal.RequireFromString(total),
		TaxAmount:      decimal.Zero,
		ShippingAmount: decimal.Zero,
		TotalAmount:    decimal.RequireFromString(total),
		PaymentMethod:  "card",
		Status:         status,
		PaymentStatus:  payStatus,
		Items:          items,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func TestListUsersFilters(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, "ada", "ada@example.com", "admin")
	seedUser(t, db, "grace", "grace@example.com", "user")
	seedUser(t, db, "linus", "torvalds@example.com", "user")

	total, users, err := svc.ListUsers(ctx, UserFilters{}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, users, 3)

	// Search matches username or email.
	total, users, err = svc.ListUsers(ctx, UserFilters{Search: "grace"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "grace", users[0].Username)

	total, users, err = svc.ListUsers(ctx, UserFilters{Search: "torvalds"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "linus", users[0].Username)

	total, _, err = svc.ListUsers(ctx, UserFilters{Role: "user"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	total, _, err = svc.ListUsers(ctx, UserFilters{Search: "example.com", Role: "admin"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestGetUserWithOrders(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	u := seedUser(t, db, "ada", "ada@example.com", "user")
	seedOrder(t, db, u.ID, "ORD-1", "pending", "pending", "10.00")
	seedOrder(t, db, u.ID, "ORD-2", "pending", "pending", "20.00")

	got, orders, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "ada", got.Username)
	require.Len(t, orders, 2)

	_, _, err = svc.GetUser(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRole(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	u := seedUser(t, db, "grace", "grace@example.com", "user")

	got, err := svc.UpdateRole(ctx, u.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, "admin", got.Role)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, u.ID).Error)
	require.Equal(t, "admin", reloaded.Role)

	got, err = svc.UpdateRole(ctx, u.ID, "user")
	require.NoError(t, err)
	require.Equal(t, "user", got.Role)

	_, err = svc.UpdateRole(ctx, u.ID, "superuser")
	require.ErrorIs(t, err, ErrBadRole)

	_, err = svc.UpdateRole(ctx, 9999, "admin")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDashboard(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, db, "ada", "ada@example.com", "admin")
	customer := seedUser(t, db, "grace", "grace@example.com", "user")
	require.NoError(t, db.Create(&models.Category{Name: "Wear", Slug: "wear"}).Error)
	require.NoError(t, db.Create(&models.Product{
		Name: "Tee", Slug: "tee", SKU: "TEE-1",
		Price: decimal.RequireFromString("20.00"),
	}).Error)

	// Paid revenue counts only paid orders; pending count only pending ones.
	seedOrder(t, db, customer.ID, "ORD-1", "pending", "pending", "10.00",
		models.OrderItem{ProductID: 1, ProductName: "Tee", ProductSKU: "TEE-1", Quantity: 2,
			Price: decimal.RequireFromString("5.00"), Total: decimal.RequireFromString("10.00")})
	seedOrder(t, db, customer.ID, "ORD-2", "processing", "paid", "25.50",
		models.OrderItem{ProductID: 1, ProductName: "Tee", ProductSKU: "TEE-1", Quantity: 3,
			Price: decimal.RequireFromString("8.50"), Total: decimal.RequireFromString("25.50")})
	seedOrder(t, db, admin.ID, "ORD-3", "delivered", "paid", "4.50")

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.TotalProducts)
	require.EqualValues(t, 3, stats.TotalOrders)
	require.EqualValues(t, 1, stats.TotalCustomers)
	require.EqualValues(t, 1, stats.TotalCategories)
	require.EqualValues(t, 1, stats.PendingOrders)
	require.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("30.00")), "revenue %s", stats.TotalRevenue)
	require.Len(t, stats.RecentOrders, 3)
	require.Len(t, stats.TopProducts, 1)
	require.Equal(t, "Tee", stats.TopProducts[0].ProductName)
	require.EqualValues(t, 5, stats.TopProducts[0].Units)
}

func TestDashboardEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.TotalOrders)
	require.True(t, stats.TotalRevenue.IsZero())
	require.Empty(t, stats.RecentOrders)
	require.Empty(t, stats.TopProducts)
}
