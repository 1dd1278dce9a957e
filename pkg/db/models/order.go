package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sreejithpv/keralacart-backend/pkg/enums"
)

// Order is a single-store purchase. BuyerID is null for point-of-sale orders
// recorded by the seller; those are created directly in DELIVERED. The total
// is computed from the items at assembly time and never recomputed afterwards.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	StoreID          uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	BuyerID          *uuid.UUID        `gorm:"column:buyer_id;type:uuid;index"`
	CustomerName     string            `gorm:"column:customer_name;not null"`
	CustomerPhone    string            `gorm:"column:customer_phone;not null"`
	ShippingAddress  string            `gorm:"column:shipping_address;not null"`
	TotalAmount      decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'PENDING_PAYMENT'"`
	ShippingProvider *string           `gorm:"column:shipping_provider"`
	TrackingID       *string           `gorm:"column:tracking_id"`
	PaymentReference *string           `gorm:"column:payment_reference"`
	PaidAt           *time.Time        `gorm:"column:paid_at"`
	AcceptedAt       *time.Time        `gorm:"column:accepted_at"`
	ShippedAt        *time.Time        `gorm:"column:shipped_at"`
	Items            []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
