package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/pkg/enums"
)

// StockHistory is one immutable ledger entry per stock mutation. Rows are
// append-only: nothing in the codebase updates or deletes them, and the sum
// of deltas for a product must replay to its current counters.
type StockHistory struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID    uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index"`
	ActorKind    enums.ActorKind   `gorm:"column:actor_kind;not null"`
	ActorID      uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	Action       enums.StockAction `gorm:"column:action;not null"`
	ChangeTotal  int               `gorm:"column:change_total;not null"`
	ChangeOnline int               `gorm:"column:change_online;not null"`
	Note         *string           `gorm:"column:note"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}
