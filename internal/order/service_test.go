package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/cart"
	"github.com/avelkin/storefront/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewService(&GormRepo{DB: db}, &cart.GormRepo{DB: db}), db
}

func seedProduct(t *testing.T, db *gorm.DB, name, sku, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:  name,
		Slug:  sku,
		SKU:   sku,
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func fillCart(t *testing.T, db *gorm.DB, owner cart.Owner, p *models.Product, qty uint) {
	t.Helper()
	uid := owner.UserID
	item := &models.CartItem{
		OwnerKey:  owner.Key(),
		UserID:    &uid,
		ProductID: p.ID,
		Quantity:  qty,
		Price:     p.Price,
	}
	require.NoError(t, db.Create(item).Error)
}

func validAddress() models.Address {
	return models.Address{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
		Street:    "1 Analytical Way",
		City:      "London",
		State:     "LDN",
		Zip:       "10001",
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, cart.UserOwner(1), validAddress(), validAddress(), "card")
	require.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPlaceOrderRequiresUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.PlaceOrder(context.Background(), cart.SessionOwner("s1"), validAddress(), validAddress(), "card")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := cart.UserOwner(1)
	fillCart(t, db, owner, seedProduct(t, db, "Tee", "TEE-1", "20.00"), 1)

	billing := validAddress()
	billing.FirstName = ""
	billing.Email = "not-an-email"
	shipping := validAddress()
	shipping.Zip = ""

	_, err := svc.PlaceOrder(ctx, owner, billing, shipping, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.ElementsMatch(t, []string{
		"billing_address.first_name",
		"billing_address.email",
		"shipping_address.zip",
		"payment_method",
	}, verr.Fields)

	// The cart must be untouched after a rejected checkout.
	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&lines).Error)
	require.EqualValues(t, 1, lines)
}

func TestPlaceOrderSuccess(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := cart.UserOwner(1)
	fillCart(t, db, owner, seedProduct(t, db, "Hoodie", "HOOD-1", "60.00"), 2)

	o, err := svc.PlaceOrder(ctx, owner, validAddress(), validAddress(), "card")
	require.NoError(t, err)
	require.Equal(t, StatusPending.String(), o.Status)
	require.Equal(t, PaymentPending.String(), o.PaymentStatus)
	require.NotEmpty(t, o.OrderNumber)

	require.True(t, o.Subtotal.Equal(decimal.RequireFromString("120.00")))
	require.True(t, o.TaxAmount.Equal(decimal.RequireFromString("9.60")))
	require.True(t, o.ShippingAmount.IsZero())
	require.True(t, o.TotalAmount.Equal(decimal.RequireFromString("129.60")))

	require.Len(t, o.Items, 1)
	require.Equal(t, "Hoodie", o.Items[0].ProductName)
	require.Equal(t, "HOOD-1", o.Items[0].ProductSKU)
	require.True(t, o.Items[0].Total.Equal(decimal.RequireFromString("120.00")))

	// The cart is consumed by the placement.
	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&lines).Error)
	require.Zero(t, lines)

	// Placing again from the now-empty cart fails cleanly.
	_, err = svc.PlaceOrder(ctx, owner, validAddress(), validAddress(), "card")
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderItemsSnapshotSurviveProductChanges(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := cart.UserOwner(1)
	p := seedProduct(t, db, "Original Name", "SNAP-1", "15.00")
	fillCart(t, db, owner, p, 1)

	o, err := svc.PlaceOrder(ctx, owner, validAddress(), validAddress(), "card")
	require.NoError(t, err)

	require.NoError(t, db.Model(p).Update("name", "Renamed").Error)
	require.NoError(t, db.Delete(p).Error)

	got, err := svc.GetOrder(ctx, owner, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, "Original Name", got.Items[0].ProductName)
}

func TestPlaceOrderProductVanished(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := cart.UserOwner(1)
	p := seedProduct(t, db, "Ghost", "GHOST-1", "15.00")
	fillCart(t, db, owner, p, 1)

	require.NoError(t, db.Delete(p).Error)

	_, err := svc.PlaceOrder(ctx, owner, validAddress(), validAddress(), "card")
	var perr *PlacementError
	require.ErrorAs(t, err, &perr)
	require.False(t, perr.Retryable)

	// The failed transaction must leave the cart intact.
	var lines int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&lines).Error)
	require.EqualValues(t, 1, lines)
}

func TestPlaceOrderReferenceCollisionRetries(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	first := cart.UserOwner(1)
	fillCart(t, db, first, seedProduct(t, db, "A", "A-1", "10.00"), 1)
	svc.newReference = func() string { return "ORD-COLLIDE" }
	o1, err := svc.PlaceOrder(ctx, first, validAddress(), validAddress(), "card")
	require.NoError(t, err)
	require.Equal(t, "ORD-COLLIDE", o1.OrderNumber)

	// The second placement draws the taken reference once, then a fresh one.
	second := cart.UserOwner(2)
	fillCart(t, db, second, seedProduct(t, db, "B", "B-1", "10.00"), 1)
	attempts := 0
	svc.newReference = func() string {
		attempts++
		if attempts == 1 {
			return "ORD-COLLIDE"
		}
		return fmt.Sprintf("ORD-FRESH-%d", attempts)
	}
	o2, err := svc.PlaceOrder(ctx, second, validAddress(), validAddress(), "card")
	require.NoError(t, err)
	require.Equal(t, "ORD-FRESH-2", o2.OrderNumber)
}

func TestGetOrderOwnership(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	owner := cart.UserOwner(1)
	fillCart(t, db, owner, seedProduct(t, db, "Tee", "TEE-2", "20.00"), 1)

	o, err := svc.PlaceOrder(ctx, owner, validAddress(), validAddress(), "card")
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, cart.UserOwner(2), o.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetOrder(ctx, owner, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func placeTestOrder(t *testing.T, svc *Service, db *gorm.DB, userID uint) *models.Order {
	t.Helper()
	owner := cart.UserOwner(userID)
	fillCart(t, db, owner, seedProduct(t, db, "Tee", fmt.Sprintf("TEE-%d", userID), "20.00"), 1)
	o, err := svc.PlaceOrder(context.Background(), owner, validAddress(), validAddress(), "card")
	require.NoError(t, err)
	return o
}

func TestUpdateStatusHappyPath(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	o := placeTestOrder(t, svc, db, 1)

	got, err := svc.UpdateStatus(ctx, o.ID, StatusUpdate{Status: StatusProcessing})
	require.NoError(t, err)
	require.Equal(t, "processing", got.Status)

	got, err = svc.UpdateStatus(ctx, o.ID, StatusUpdate{Status: StatusShipped})
	require.NoError(t, err)
	require.NotNil(t, got.ShippedAt)
	shippedAt := *got.ShippedAt

	got, err = svc.UpdateStatus(ctx, o.ID, StatusUpdate{Status: StatusDelivered})
	require.NoError(t, err)
	require.NotNil(t, got.DeliveredAt)

	// Re-entering shipped later must not move the original timestamp.
	_, err = svc.UpdateStatus(ctx, o.ID, StatusUpdate{Status: StatusDelivered})
	require.NoError(t, err)
	reloaded, err := svc.Repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, shippedAt.Unix(), reloaded.ShippedAt.Unix())
}

func TestUpdateStatusRejectsBadTransitions(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	o := placeTestOrder(t, svc, db, 1)

	_, err := svc.UpdateStatus(ctx, o.ID, StatusUpdate{Status: StatusShipped})
	require.ErrorIs(t, err, ErrBadTransition)

	_, err = svc.UpdateStatus(ctx, o.ID, StatusUpdate{Status: "bogus"})
	require.ErrorIs(t, err, ErrBadTransition)

	_, err = svc.UpdateStatus(ctx, 9999, StatusUpdate{Status: StatusProcessing})
	require.ErrorIs(t, err, ErrNotFound)

	// Terminal states accept nothing but themselves.
	_, err = svc.UpdateStatus(ctx, o.ID, StatusUpdate{Status: StatusCancelled})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o.ID, StatusUpdate{Status: StatusProcessing})
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestUpdatePaymentStatus(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	o := placeTestOrder(t, svc, db, 1)

	got, err := svc.UpdateStatus(ctx, o.ID, StatusUpdate{PaymentStatus: PaymentPaid})
	require.NoError(t, err)
	require.Equal(t, "paid", got.PaymentStatus)

	_, err = svc.UpdateStatus(ctx, o.ID, StatusUpdate{PaymentStatus: PaymentFailed})
	require.ErrorIs(t, err, ErrBadTransition)

	got, err = svc.UpdateStatus(ctx, o.ID, StatusUpdate{PaymentStatus: PaymentRefunded})
	require.NoError(t, err)
	require.Equal(t, "refunded", got.PaymentStatus)
}

func TestAdminListFilters(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	o1 := placeTestOrder(t, svc, db, 1)
	placeTestOrder(t, svc, db, 2)
	_, err := svc.UpdateStatus(ctx, o1.ID, StatusUpdate{Status: StatusProcessing})
	require.NoError(t, err)

	total, orders, err := svc.AdminList(ctx, AdminFilters{Status: "processing"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, o1.ID, orders[0].ID)

	total, _, err = svc.AdminList(ctx, AdminFilters{Search: o1.OrderNumber}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestListOrders(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	placeTestOrder(t, svc, db, 1)
	placeTestOrder(t, svc, db, 2)

	total, orders, err := svc.ListOrders(ctx, cart.UserOwner(1), 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	require.Equal(t, uint(1), orders[0].UserID)

	_, _, err = svc.ListOrders(ctx, cart.SessionOwner("s1"), 0, 10)
	require.ErrorIs(t, err, ErrForbidden)
}
