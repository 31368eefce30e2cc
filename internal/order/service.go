package order

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"gorm.io/gorm"

	"github.com/avelkin/storefront/internal/cart"
	"github.com/avelkin/storefront/internal/models"
)

// referenceRetries bounds how often a colliding order reference is
// regenerated before giving up.
const referenceRetries = 2

type Service struct {
	Repo *GormRepo
	Cart *cart.GormRepo

	newReference func() string
}

func NewService(repo *GormRepo, cartRepo *cart.GormRepo) *Service {
	return &Service{
		Repo:         repo,
		Cart:         cartRepo,
		newReference: NewReference,
	}
}

// PlaceOrder converts a non-empty cart into a durable order. Everything
// that can be rejected cheaply (empty cart, address validation, totals) is
// settled before the transaction opens; the transactional section only
// performs durable writes.
func (s *Service) PlaceOrder(ctx context.Context, owner cart.Owner, billing, shipping models.Address, paymentMethod string) (*models.Order, error) {
	if owner.UserID == 0 {
		return nil, ErrForbidden
	}

	lines, err := s.Cart.GetCart(ctx, owner)
	if err != nil {
		return nil, &PlacementError{Retryable: true, Err: err}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	if verr := validateCheckout(billing, shipping, paymentMethod); verr != nil {
		return nil, verr
	}

	totals := cart.ComputeTotals(lines)

	var lastErr error
	for attempt := 0; attempt <= referenceRetries; attempt++ {
		o := &models.Order{
			OrderNumber:    s.newReference(),
			UserID:         owner.UserID,
			Subtotal:       totals.Subtotal,
			TaxAmount:      totals.Tax,
			ShippingAmount: totals.Shipping,
			TotalAmount:    totals.Total,
			BillingAddress: billing,
			ShippingAddr:   shipping,
			PaymentMethod:  paymentMethod,
			Status:         StatusPending.String(),
			PaymentStatus:  PaymentPending.String(),
		}

		err := s.Repo.CreateFromCart(ctx, o, lines, owner.Key())
		switch {
		case err == nil:
			return o, nil
		case errors.Is(err, ErrEmptyCart):
			// A concurrent placement got there first.
			return nil, ErrEmptyCart
		case errors.Is(err, gorm.ErrDuplicatedKey):
			lastErr = err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, &PlacementError{Retryable: false, Err: err}
		default:
			return nil, &PlacementError{Retryable: true, Err: err}
		}
	}
	return nil, &PlacementError{Retryable: true, Err: lastErr}
}

func validateCheckout(billing, shipping models.Address, paymentMethod string) *ValidationError {
	var fields []string

	check := func(prefix, name, value string) {
		if value == "" {
			fields = append(fields, prefix+"."+name)
		}
	}

	check("billing_address", "first_name", billing.FirstName)
	check("billing_address", "last_name", billing.LastName)
	if billing.Email == "" {
		fields = append(fields, "billing_address.email")
	} else if _, err := mail.ParseAddress(billing.Email); err != nil {
		fields = append(fields, "billing_address.email")
	}
	check("billing_address", "phone", billing.Phone)
	check("billing_address", "address", billing.Street)
	check("billing_address", "city", billing.City)
	check("billing_address", "state", billing.State)
	check("billing_address", "zip", billing.Zip)

	check("shipping_address", "first_name", shipping.FirstName)
	check("shipping_address", "last_name", shipping.LastName)
	check("shipping_address", "address", shipping.Street)
	check("shipping_address", "city", shipping.City)
	check("shipping_address", "state", shipping.State)
	check("shipping_address", "zip", shipping.Zip)

	if paymentMethod == "" {
		fields = append(fields, "payment_method")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) GetOrder(ctx context.Context, owner cart.Owner, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.UserID != owner.UserID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, owner cart.Owner, offset, limit int) (int64, []models.Order, error) {
	if owner.UserID == 0 {
		return 0, nil, ErrForbidden
	}
	return s.Repo.ListByUser(ctx, owner.UserID, offset, limit)
}

func (s *Service) AdminList(ctx context.Context, f AdminFilters, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.AdminList(ctx, f, offset, limit)
}

// StatusUpdate is an admin-driven transition request. Empty values leave
// the corresponding field untouched.
type StatusUpdate struct {
	Status        Status
	PaymentStatus PaymentStatus
	Notes         *string
}

// UpdateStatus applies the order and payment state machines. Shipped and
// delivered timestamps are set exactly once; re-entering a state never
// overwrites them.
func (s *Service) UpdateStatus(ctx context.Context, id uint, upd StatusUpdate) (*models.Order, error) {
	if upd.Status != "" && !upd.Status.Valid() {
		return nil, ErrBadTransition
	}
	if upd.PaymentStatus != "" && !upd.PaymentStatus.Valid() {
		return nil, ErrBadTransition
	}

	var out *models.Order
	err := s.Repo.Transaction(ctx, func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.First(&o, id).Error; err != nil {
			return err
		}

		updates := map[string]any{}
		now := time.Now().UTC()

		if upd.Status != "" {
			from := Status(o.Status)
			if !from.CanTransition(upd.Status) {
				return ErrBadTransition
			}
			updates["status"] = upd.Status.String()
			if upd.Status == StatusShipped && o.ShippedAt == nil {
				updates["shipped_at"] = now
			}
			if upd.Status == StatusDelivered && o.DeliveredAt == nil {
				updates["delivered_at"] = now
			}
		}

		if upd.PaymentStatus != "" {
			from := PaymentStatus(o.PaymentStatus)
			if !from.CanTransition(upd.PaymentStatus) {
				return ErrBadTransition
			}
			updates["payment_status"] = upd.PaymentStatus.String()
		}

		if upd.Notes != nil {
			updates["notes"] = *upd.Notes
		}

		if len(updates) > 0 {
			if err := tx.Model(&o).Updates(updates).Error; err != nil {
				return err
			}
			if err := tx.Preload("Items").First(&o, id).Error; err != nil {
				return err
			}
		}
		out = &o
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out, nil
}
