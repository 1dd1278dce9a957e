package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sreejithpv/keralacart-backend/pkg/enums"
)

// Product is the canonical seller listing. The stock counters are never
// written directly by callers: every mutation flows through the inventory
// guard so the ledger stays complete and online_stock <= total_stock holds.
type Product struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	StoreID     uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	Name        string            `gorm:"column:name;not null"`
	ModelName   *string           `gorm:"column:model_name"`
	Description *string           `gorm:"column:description"`
	Price       decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	MRP         decimal.Decimal   `gorm:"column:mrp;type:numeric(10,2);not null"`
	TotalStock  int               `gorm:"column:total_stock;not null;default:0"`
	OnlineStock int               `gorm:"column:online_stock;not null;default:0"`
	SaleChannel enums.SaleChannel `gorm:"column:sale_channel;not null;default:'BOTH'"`
	IsActive    bool              `gorm:"column:is_active;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
