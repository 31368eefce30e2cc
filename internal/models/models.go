package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"index"                    json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type Category struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"not null"                 json:"name"`
	Slug   string `gorm:"unique;not null"          json:"slug"`
	Active bool   `gorm:"default:true"             json:"active"`
}

type Product struct {
	ID          uint                `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name        string              `gorm:"not null"                        json:"name"`
	Slug        string              `gorm:"unique;not null"                 json:"slug"`
	SKU         string              `gorm:"column:sku;unique;not null"      json:"sku"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `gorm:"type:decimal(10,2);not null"     json:"price"`
	SalePrice   decimal.NullDecimal `gorm:"type:decimal(10,2)"              json:"sale_price"`
	Stock       int                 `gorm:"default:0"                       json:"stock"`
	InStock     bool                `gorm:"default:true"                    json:"in_stock"`
	Sizes       StringList          `gorm:"type:text"                       json:"sizes"`
	Colors      StringList          `gorm:"type:text"                       json:"colors"`
	Status      string              `gorm:"not null;default:active;index"   json:"status"`
	Featured    bool                `gorm:"default:false;index"             json:"featured"`
	CategoryID  uint                `gorm:"index"                           json:"category_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// EffectivePrice is the price a cart line captures at add time: the sale
// price when one is set and undercuts the list price, else the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThan(p.Price) {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// CartItem is one line of a visitor's cart. A line belongs to either an
// authenticated user or an anonymous session, tracked by OwnerKey; the
// composite unique index guarantees a single row per
// (owner, product, size, color) combination.
type CartItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"                                 json:"id"`
	OwnerKey  string          `gorm:"uniqueIndex:idx_cart_line,priority:1;not null"            json:"-"`
	UserID    *uint           `gorm:"index"                                                    json:"user_id,omitempty"`
	SessionID *string         `gorm:"index"                                                    json:"session_id,omitempty"`
	ProductID uint            `gorm:"uniqueIndex:idx_cart_line,priority:2;not null"            json:"product_id"`
	Quantity  uint            `gorm:"not null;default:1;check:quantity>0"                      json:"quantity"`
	Size      string          `gorm:"uniqueIndex:idx_cart_line,priority:3;not null;default:''" json:"size"`
	Color     string          `gorm:"uniqueIndex:idx_cart_line,priority:4;not null;default:''" json:"color"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"                              json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_items" }

type Order struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	OrderNumber    string          `gorm:"unique;not null"                json:"order_number"`
	UserID         uint            `gorm:"index;not null"                 json:"user_id"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null"    json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null"    json:"tax_amount"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"    json:"shipping_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null"    json:"total_amount"`
	BillingAddress Address         `gorm:"type:text;not null"             json:"billing_address"`
	ShippingAddr   Address         `gorm:"column:shipping_address;type:text;not null" json:"shipping_address"`
	PaymentMethod  string          `gorm:"not null"                       json:"payment_method"`
	Status         string          `gorm:"not null;default:pending;index" json:"status"`
	PaymentStatus  string          `gorm:"not null;default:pending;index" json:"payment_status"`
	Notes          string          `json:"notes,omitempty"`
	ShippedAt      *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
	Items          []OrderItem     `gorm:"constraint:OnDelete:CASCADE"    json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderItem snapshots a purchased line. Product name, SKU and price are
// copied at order time so the record stays readable after the product
// changes or disappears.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID     uint            `gorm:"index;not null"              json:"order_id"`
	ProductID   uint            `gorm:"not null"                    json:"product_id"`
	ProductName string          `gorm:"not null"                    json:"product_name"`
	ProductSKU  string          `gorm:"column:product_sku;not null" json:"product_sku"`
	Quantity    uint            `gorm:"not null;check:quantity>0"   json:"quantity"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
}
