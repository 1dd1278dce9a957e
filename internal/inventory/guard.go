package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/internal/ledger"
	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/types"
)

// SaleChannel names the channel a sale came through. It decides which stock
// counters move and which availability check applies.
type SaleChannel string

const (
	// ChannelOnline decrements total and online stock by the same quantity.
	ChannelOnline SaleChannel = "online"
	// ChannelInStore decrements total stock and clamps online stock down to
	// the new total when needed. The clamp is part of the logged deltas.
	ChannelInStore SaleChannel = "in_store"
)

// Guard is the only writer of product stock counters. Every mutation applies
// the counter change and appends exactly one ledger entry inside the caller's
// transaction, or does neither.
type Guard struct {
	ledger ledger.Repository
}

// NewGuard builds the inventory guard around the ledger write surface.
func NewGuard(ledgerRepo ledger.Repository) (*Guard, error) {
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &Guard{ledger: ledgerRepo}, nil
}

// SaleInput describes a stock decrement caused by a sale.
type SaleInput struct {
	ProductID uuid.UUID
	Quantity  int
	Channel   SaleChannel
	Actor     types.Actor
	Note      string
}

// AdjustmentInput describes a manual seller restock or correction. Absent
// targets leave the counter unchanged.
type AdjustmentInput struct {
	ProductID   uuid.UUID
	TotalStock  *int
	OnlineStock *int
	Actor       types.Actor
	Note        string
}

// ReturnInput describes stock coming back from a cancelled or refunded order.
type ReturnInput struct {
	ProductID uuid.UUID
	Quantity  int
	Actor     types.Actor
	Note      string
}

// Applied reports the counters after a mutation and the deltas recorded in
// the ledger entry.
type Applied struct {
	TotalStock   int
	OnlineStock  int
	ChangeTotal  int
	ChangeOnline int
}

// ApplySale decrements stock for one sold line item.
func (g *Guard) ApplySale(ctx context.Context, tx *gorm.DB, input SaleInput) (*Applied, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale quantity must be positive")
	}
	if err := input.Actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}

	product, err := loadProduct(ctx, tx, input.ProductID)
	if err != nil {
		return nil, err
	}

	var newTotal, newOnline int
	switch input.Channel {
	case ChannelOnline:
		if !product.SaleChannel.SellsOnline() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not sold online").
				WithDetails(map[string]any{"product_id": product.ID, "sale_channel": product.SaleChannel})
		}
		if product.OnlineStock < input.Quantity {
			return nil, insufficientStock(product.ID, input.Quantity, product.OnlineStock, "online")
		}
		newTotal = product.TotalStock - input.Quantity
		newOnline = product.OnlineStock - input.Quantity
	case ChannelInStore:
		if !product.SaleChannel.SellsInStore() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not sold in store").
				WithDetails(map[string]any{"product_id": product.ID, "sale_channel": product.SaleChannel})
		}
		if product.TotalStock < input.Quantity {
			return nil, insufficientStock(product.ID, input.Quantity, product.TotalStock, "total")
		}
		newTotal = product.TotalStock - input.Quantity
		newOnline = product.OnlineStock
		if newOnline > newTotal {
			newOnline = newTotal
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown sale channel %q", input.Channel))
	}

	return g.commit(ctx, tx, product, newTotal, newOnline, input.Actor, enums.StockActionSale, input.Note)
}

// ApplyAdjustment moves the counters to absolute seller-provided targets.
func (g *Guard) ApplyAdjustment(ctx context.Context, tx *gorm.DB, input AdjustmentInput) (*Applied, error) {
	if input.TotalStock == nil && input.OnlineStock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one stock value is required")
	}
	if err := input.Actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}

	product, err := loadProduct(ctx, tx, input.ProductID)
	if err != nil {
		return nil, err
	}

	newTotal := product.TotalStock
	newOnline := product.OnlineStock
	if input.TotalStock != nil {
		newTotal = *input.TotalStock
	}
	if input.OnlineStock != nil {
		newOnline = *input.OnlineStock
	}
	if newTotal < 0 || newOnline < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock values cannot be negative")
	}
	if newOnline > newTotal {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "online stock cannot exceed total stock").
			WithDetails(map[string]any{
				"product_id":   product.ID,
				"total_stock":  newTotal,
				"online_stock": newOnline,
			})
	}

	if newTotal == product.TotalStock && newOnline == product.OnlineStock {
		// Nothing moved, nothing to log.
		return &Applied{TotalStock: newTotal, OnlineStock: newOnline}, nil
	}

	return g.commit(ctx, tx, product, newTotal, newOnline, input.Actor, enums.StockActionUpdated, input.Note)
}

// ApplyReturn restores stock for a cancelled or refunded order line. Returned
// units go back to both counters, mirroring the online sale that took them.
func (g *Guard) ApplyReturn(ctx context.Context, tx *gorm.DB, input ReturnInput) (*Applied, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return quantity must be positive")
	}
	if err := input.Actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}

	product, err := loadProduct(ctx, tx, input.ProductID)
	if err != nil {
		return nil, err
	}

	newTotal := product.TotalStock + input.Quantity
	newOnline := product.OnlineStock + input.Quantity
	if newOnline > newTotal {
		newOnline = newTotal
	}

	return g.commit(ctx, tx, product, newTotal, newOnline, input.Actor, enums.StockActionReturn, input.Note)
}

// LogCreation appends the CREATED entry for a product that was just inserted
// in the same transaction. The deltas equal the initial counters so the
// ledger replays to the product's state from its first row.
func (g *Guard) LogCreation(ctx context.Context, tx *gorm.DB, product *models.Product, actor types.Actor) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product required")
	}
	if err := actor.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}
	note := "Initial stock for new product."
	entry := &models.StockHistory{
		ProductID:    product.ID,
		ActorKind:    actor.Kind,
		ActorID:      actor.ID,
		Action:       enums.StockActionCreated,
		ChangeTotal:  product.TotalStock,
		ChangeOnline: product.OnlineStock,
		Note:         &note,
	}
	if err := g.ledger.WithTx(tx).Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record creation ledger entry")
	}
	return nil
}

// commit writes the new counters with a guarded update and appends the ledger
// entry. The WHERE clause re-asserts the values read earlier in this
// transaction; zero affected rows means a concurrent writer got there first
// and the whole unit of work should be retried.
func (g *Guard) commit(
	ctx context.Context,
	tx *gorm.DB,
	product *models.Product,
	newTotal, newOnline int,
	actor types.Actor,
	action enums.StockAction,
	note string,
) (*Applied, error) {
	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET total_stock = ?, online_stock = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND total_stock = ? AND online_stock = ?
	`, newTotal, newOnline, product.ID, product.TotalStock, product.OnlineStock)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update stock counters")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBusy, "product stock changed concurrently").
			WithDetails(map[string]any{"product_id": product.ID})
	}

	applied := &Applied{
		TotalStock:   newTotal,
		OnlineStock:  newOnline,
		ChangeTotal:  newTotal - product.TotalStock,
		ChangeOnline: newOnline - product.OnlineStock,
	}

	entry := &models.StockHistory{
		ProductID:    product.ID,
		ActorKind:    actor.Kind,
		ActorID:      actor.ID,
		Action:       action,
		ChangeTotal:  applied.ChangeTotal,
		ChangeOnline: applied.ChangeOnline,
	}
	if note != "" {
		entry.Note = &note
	}
	if err := g.ledger.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ledger entry")
	}

	return applied, nil
}

func loadProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	var product models.Product
	if err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

func insufficientStock(productID uuid.UUID, requested, available int, counter string) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient %s stock: requested %d, available %d", counter, requested, available)).
		WithDetails(map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
			"counter":    counter,
		})
}
