package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/internal/inventory"
	"github.com/sreejithpv/keralacart-backend/internal/products"
	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
	"github.com/sreejithpv/keralacart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockGuard interface {
	ApplySale(ctx context.Context, tx *gorm.DB, input inventory.SaleInput) (*inventory.Applied, error)
	ApplyReturn(ctx context.Context, tx *gorm.DB, input inventory.ReturnInput) (*inventory.Applied, error)
}

type storeReader interface {
	FindBySellerID(ctx context.Context, sellerID uuid.UUID) (*models.Store, error)
}

// Service defines order assembly, lifecycle, and read operations.
type Service interface {
	CreateBuyerOrder(ctx context.Context, buyerID uuid.UUID, input CreateBuyerOrderInput) (*OrderDTO, error)
	CreateLocalOrder(ctx context.Context, sellerID uuid.UUID, input CreateLocalOrderInput) (*OrderDTO, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentReference string) (*OrderDTO, error)
	Transition(ctx context.Context, sellerID, orderID uuid.UUID, target enums.OrderStatus, meta *ShippingMeta) (*OrderDTO, error)
	CancelByBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error)
	GetOrder(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*OrderDTO, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]OrderDTO, string, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]OrderDTO, string, error)
}

// CartItem is one requested order line.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateBuyerOrderInput carries the checkout payload for an online order.
type CreateBuyerOrderInput struct {
	Items           []CartItem
	CustomerName    string
	CustomerPhone   string
	ShippingAddress string
}

// CreateLocalOrderInput carries the point-of-sale payload recorded by the
// seller at the counter.
type CreateLocalOrderInput struct {
	Items         []CartItem
	CustomerName  string
	CustomerPhone string
}

type service struct {
	repo     Repository
	products products.Repository
	stores   storeReader
	guard    stockGuard
	tx       txRunner
	retries  int
	now      func() time.Time
}

// NewService builds the order service. retries bounds how many times an
// assembly is replayed when a concurrent stock writer wins.
func NewService(repo Repository, productRepo products.Repository, stores storeReader, guard stockGuard, tx txRunner, retries int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store reader required")
	}
	if guard == nil {
		return nil, fmt.Errorf("inventory guard required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if retries < 1 {
		return nil, fmt.Errorf("retries must be at least 1")
	}
	return &service{
		repo:     repo,
		products: productRepo,
		stores:   stores,
		guard:    guard,
		tx:       tx,
		retries:  retries,
		now:      time.Now,
	}, nil
}

// CreateBuyerOrder assembles an online order in PENDING_PAYMENT. Stock is
// taken at assembly time so a slow payment cannot oversell the shelf.
func (s *service) CreateBuyerOrder(ctx context.Context, buyerID uuid.UUID, input CreateBuyerOrderInput) (*OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if input.CustomerName == "" || input.CustomerPhone == "" || input.ShippingAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name, phone, and shipping address are required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.withBusyRetry(ctx, func(tx *gorm.DB) error {
		orderID := uuid.New()
		storeID, lines, total, err := s.assembleLines(ctx, tx, input.Items, assembleOptions{
			channel:       inventory.ChannelOnline,
			actor:         types.BuyerActor(buyerID),
			requireActive: true,
			note:          fmt.Sprintf("order %s", orderID),
		})
		if err != nil {
			return err
		}

		order = &models.Order{
			ID:              orderID,
			StoreID:         storeID,
			BuyerID:         &buyerID,
			CustomerName:    input.CustomerName,
			CustomerPhone:   input.CustomerPhone,
			ShippingAddress: input.ShippingAddress,
			TotalAmount:     total,
			Status:          enums.OrderStatusPendingPayment,
			Items:           lines,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// CreateLocalOrder records a point-of-sale order. The goods left the counter
// already, so the order is born DELIVERED and paid.
func (s *service) CreateLocalOrder(ctx context.Context, sellerID uuid.UUID, input CreateLocalOrderInput) (*OrderDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	if input.CustomerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	store, err := s.stores.FindBySellerID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found for seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	var order *models.Order
	err = s.withBusyRetry(ctx, func(tx *gorm.DB) error {
		orderID := uuid.New()
		storeID, lines, total, err := s.assembleLines(ctx, tx, input.Items, assembleOptions{
			channel: inventory.ChannelInStore,
			actor:   types.SellerActor(sellerID),
			note:    fmt.Sprintf("order %s", orderID),
		})
		if err != nil {
			return err
		}
		if storeID != store.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "products do not belong to seller")
		}

		now := s.now()
		order = &models.Order{
			ID:              orderID,
			StoreID:         storeID,
			CustomerName:    input.CustomerName,
			CustomerPhone:   input.CustomerPhone,
			ShippingAddress: "",
			TotalAmount:     total,
			Status:          enums.OrderStatusDelivered,
			PaidAt:          &now,
			Items:           lines,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// MarkPaid consumes the payment provider callback. Replays with the same
// reference are acknowledged without effect.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentReference string) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if paymentReference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.PaymentReference != nil {
			if *order.PaymentReference == paymentReference {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "order already paid with a different payment reference").
				WithDetails(map[string]any{"order_id": order.ID})
		}

		// The unique index on payment_reference backs this; catching it here
		// keeps a replay aimed at the wrong order from claiming the reference.
		if claimed, ferr := repo.FindByPaymentReference(ctx, paymentReference); ferr == nil && claimed.ID != order.ID {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment reference already used by another order").
				WithDetails(map[string]any{"order_id": claimed.ID})
		} else if ferr != nil && !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "check payment reference")
		}

		if err := ApplyTransition(order, enums.OrderStatusHeldForSeller, nil, s.now()); err != nil {
			return err
		}
		order.PaymentReference = &paymentReference
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// Transition drives a seller-side state change on an owned order. Moving to
// CANCELLED or REFUNDED restocks every surviving line item.
func (s *service) Transition(ctx context.Context, sellerID, orderID uuid.UUID, target enums.OrderStatus, meta *ShippingMeta) (*OrderDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}

	store, err := s.stores.FindBySellerID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found for seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	var order *models.Order
	err = s.withBusyRetry(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var terr error
		order, terr = repo.FindByID(ctx, orderID)
		if terr != nil {
			if errors.Is(terr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, terr, "load order")
		}
		if order.StoreID != store.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
		}

		prev := order.Status
		if err := ApplyTransition(order, target, meta, s.now()); err != nil {
			return err
		}
		// Re-entry is a no-op; the same order is never restocked twice.
		if prev == target {
			return nil
		}
		if target == enums.OrderStatusCancelled || target == enums.OrderStatusRefunded {
			if err := s.restock(ctx, tx, order, types.SellerActor(sellerID), target); err != nil {
				return err
			}
		}
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// CancelByBuyer lets the buyer withdraw an order the seller has not yet
// accepted. Taken stock goes back on the shelf.
func (s *service) CancelByBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}

	var order *models.Order
	err := s.withBusyRetry(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var terr error
		order, terr = repo.FindByID(ctx, orderID)
		if terr != nil {
			if errors.Is(terr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, terr, "load order")
		}
		if order.BuyerID == nil || *order.BuyerID != buyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}
		// A repeated cancel is acknowledged without restocking again.
		if order.Status == enums.OrderStatusCancelled {
			return nil
		}
		if order.Status != enums.OrderStatusPendingPayment && order.Status != enums.OrderStatusHeldForSeller {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, enums.OrderStatusCancelled)).
				WithDetails(map[string]any{"from": order.Status, "to": enums.OrderStatusCancelled})
		}

		if err := ApplyTransition(order, enums.OrderStatusCancelled, nil, s.now()); err != nil {
			return err
		}
		if err := s.restock(ctx, tx, order, types.BuyerActor(buyerID), enums.OrderStatusCancelled); err != nil {
			return err
		}
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// GetOrder loads one order for its owning seller or its buyer.
func (s *service) GetOrder(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if err := actor.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "actor identity missing")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	switch {
	case actor.IsBuyer():
		if order.BuyerID == nil || *order.BuyerID != actor.ID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
		}
	case actor.IsSeller():
		store, err := s.stores.FindBySellerID(ctx, actor.ID)
		if err != nil || store.ID != order.StoreID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
		}
	}
	return NewOrderDTO(order), nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]OrderDTO, string, error) {
	store, err := s.stores.FindBySellerID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "store not found for seller")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	rows, next, err := s.repo.ListByStore(ctx, store.ID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return mapOrderDTOs(rows), next, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]OrderDTO, string, error) {
	rows, next, err := s.repo.ListByBuyer(ctx, buyerID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return mapOrderDTOs(rows), next, nil
}

type assembleOptions struct {
	channel       inventory.SaleChannel
	actor         types.Actor
	requireActive bool
	note          string
}

// assembleLines resolves the cart against live products, takes stock through
// the guard, and freezes name and price snapshots. All products must belong
// to one store. Reads go through tx so the snapshot and the guarded
// decrement sit in the same unit of work.
func (s *service) assembleLines(ctx context.Context, tx *gorm.DB, items []CartItem, opts assembleOptions) (uuid.UUID, []models.OrderItem, decimal.Decimal, error) {
	var storeID uuid.UUID
	lines := make([]models.OrderItem, 0, len(items))
	total := decimal.Zero

	productRepo := s.products.WithTx(tx)
	for _, item := range items {
		product, err := productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}
			return uuid.Nil, nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if storeID == uuid.Nil {
			storeID = product.StoreID
		} else if product.StoreID != storeID {
			return uuid.Nil, nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeCrossStoreCart,
				"all items must belong to the same store").
				WithDetails(map[string]any{"product_id": product.ID})
		}
		if opts.requireActive && !product.IsActive {
			return uuid.Nil, nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": product.ID})
		}

		if _, err := s.guard.ApplySale(ctx, tx, inventory.SaleInput{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Channel:   opts.channel,
			Actor:     opts.actor,
			Note:      opts.note,
		}); err != nil {
			return uuid.Nil, nil, decimal.Zero, err
		}

		productID := product.ID
		lines = append(lines, models.OrderItem{
			ID:          uuid.New(),
			ProductID:   &productID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Price:       product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return storeID, lines, total, nil
}

// restock returns every line's quantity to the shelf when an order dies.
func (s *service) restock(ctx context.Context, tx *gorm.DB, order *models.Order, actor types.Actor, target enums.OrderStatus) error {
	note := fmt.Sprintf("order %s %s", order.ID, target)
	for _, item := range order.Items {
		if item.ProductID == nil || item.Quantity <= 0 {
			continue
		}
		if _, err := s.guard.ApplyReturn(ctx, tx, inventory.ReturnInput{
			ProductID: *item.ProductID,
			Quantity:  item.Quantity,
			Actor:     actor,
			Note:      note,
		}); err != nil {
			// A deleted product cannot take its stock back.
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}

// withBusyRetry replays the unit of work when a concurrent stock writer wins
// the guarded update. Any other failure surfaces immediately.
func (s *service) withBusyRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < s.retries; attempt++ {
		err = s.tx.WithTx(ctx, fn)
		if err == nil || !pkgerrors.IsCode(err, pkgerrors.CodeBusy) {
			return err
		}
	}
	return err
}

func validateItems(items []CartItem) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	return nil
}
