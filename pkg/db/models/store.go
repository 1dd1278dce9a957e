package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is the seller-owned storefront. Profile CRUD lives outside this
// service; orders and products only need the ownership edge.
type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SellerID  uuid.UUID `gorm:"column:seller_id;type:uuid;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
