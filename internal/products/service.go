package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/internal/inventory"
	"github.com/sreejithpv/keralacart-backend/internal/stores"
	"github.com/sreejithpv/keralacart-backend/pkg/db"
	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
	"github.com/sreejithpv/keralacart-backend/pkg/types"
)

// Service exposes seller catalog management and the public storefront reads.
type Service interface {
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error
	ToggleActive(ctx context.Context, sellerID, productID uuid.UUID) (*ProductDTO, error)
	UpdateStock(ctx context.Context, sellerID, productID uuid.UUID, input UpdateStockInput) (*ProductDTO, error)
	VerifyOwnership(ctx context.Context, sellerID, productID uuid.UUID) error
	ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]ProductDTO, string, error)
	ListPublic(ctx context.Context, filters PublicFilters, params pagination.Params) ([]PublicProductDTO, string, error)
	GetPublic(ctx context.Context, productID uuid.UUID) (*PublicProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	ModelName   *string
	Description *string
	Price       decimal.Decimal
	MRP         *decimal.Decimal
	TotalStock  int
	OnlineStock int
	SaleChannel enums.SaleChannel
}

// UpdateProductInput holds optional metadata mutations. Stock counters are
// not updatable here, they only move through UpdateStock.
type UpdateProductInput struct {
	Name        *string
	ModelName   *string
	Description *string
	Price       *decimal.Decimal
	MRP         *decimal.Decimal
	SaleChannel *enums.SaleChannel
}

// UpdateStockInput carries the absolute counter targets for an adjustment.
type UpdateStockInput struct {
	TotalStock  *int
	OnlineStock *int
	Note        string
}

type service struct {
	repo      Repository
	storeRepo stores.Repository
	guard     *inventory.Guard
	dbClient  *db.Client
}

// NewService constructs a product service instance.
func NewService(repo Repository, storeRepo stores.Repository, guard *inventory.Guard, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if storeRepo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if guard == nil {
		return nil, fmt.Errorf("inventory guard required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, storeRepo: storeRepo, guard: guard, dbClient: dbClient}, nil
}

// CreateProduct inserts the listing and its CREATED ledger entry atomically.
func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.TotalStock < 0 || input.OnlineStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock values cannot be negative")
	}
	if input.OnlineStock > input.TotalStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "online stock cannot exceed total stock")
	}
	channel := input.SaleChannel
	if channel == "" {
		channel = enums.SaleChannelBoth
	}
	if !channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sale channel %q", channel))
	}

	store, err := s.ownedStore(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	// MRP falls back to the selling price when the seller leaves it out.
	mrp := input.Price
	if input.MRP != nil {
		if input.MRP.LessThan(input.Price) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mrp cannot be below price")
		}
		mrp = *input.MRP
	}

	product := &models.Product{
		ID:          uuid.New(),
		StoreID:     store.ID,
		Name:        input.Name,
		ModelName:   input.ModelName,
		Description: input.Description,
		Price:       input.Price,
		MRP:         mrp,
		TotalStock:  input.TotalStock,
		OnlineStock: input.OnlineStock,
		SaleChannel: channel,
		IsActive:    true,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		return s.guard.LogCreation(ctx, tx, product, types.SellerActor(sellerID))
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return NewProductDTO(product), nil
}

// UpdateProduct mutates listing metadata for the owning seller.
func (s *service) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.ownedProduct(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = *input.Name
	}
	if input.ModelName != nil {
		product.ModelName = input.ModelName
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.MRP != nil {
		product.MRP = *input.MRP
	}
	if product.MRP.LessThan(product.Price) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mrp cannot be below price")
	}
	if input.SaleChannel != nil {
		if !input.SaleChannel.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sale channel %q", *input.SaleChannel))
		}
		product.SaleChannel = *input.SaleChannel
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(product), nil
}

// DeleteProduct removes the listing. Ledger rows survive the delete so the
// audit trail stays complete.
func (s *service) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	product, err := s.ownedProduct(ctx, sellerID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// VerifyOwnership confirms the product belongs to the seller's store.
func (s *service) VerifyOwnership(ctx context.Context, sellerID, productID uuid.UUID) error {
	_, err := s.ownedProduct(ctx, sellerID, productID)
	return err
}

// ToggleActive flips storefront visibility without touching stock.
func (s *service) ToggleActive(ctx context.Context, sellerID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.ownedProduct(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}
	product.IsActive = !product.IsActive
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: toggle product")
	}
	return NewProductDTO(product), nil
}

// UpdateStock moves the counters to seller-provided absolute targets through
// the inventory guard, which appends the UPDATED ledger entry.
func (s *service) UpdateStock(ctx context.Context, sellerID, productID uuid.UUID, input UpdateStockInput) (*ProductDTO, error) {
	product, err := s.ownedProduct(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	var applied *inventory.Applied
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var terr error
		applied, terr = s.guard.ApplyAdjustment(ctx, tx, inventory.AdjustmentInput{
			ProductID:   product.ID,
			TotalStock:  input.TotalStock,
			OnlineStock: input.OnlineStock,
			Actor:       types.SellerActor(sellerID),
			Note:        input.Note,
		})
		return terr
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}

	product.TotalStock = applied.TotalStock
	product.OnlineStock = applied.OnlineStock
	return NewProductDTO(product), nil
}

// ListForSeller pages through the seller's own catalog, newest first.
func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]ProductDTO, string, error) {
	store, err := s.ownedStore(ctx, sellerID)
	if err != nil {
		return nil, "", err
	}
	rows, next, err := s.repo.ListByStore(ctx, store.ID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return mapProductDTOs(rows), next, nil
}

// ListPublic pages through the storefront view of active online products.
func (s *service) ListPublic(ctx context.Context, filters PublicFilters, params pagination.Params) ([]PublicProductDTO, string, error) {
	rows, next, err := s.repo.ListPublic(ctx, filters, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list public products")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	stats, err := s.repo.ReviewStatsFor(ctx, ids)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: review stats")
	}
	return mapPublicProductDTOs(rows, stats), next, nil
}

// GetPublic loads a single storefront listing. Inactive products read as
// missing to buyers.
func (s *service) GetPublic(ctx context.Context, productID uuid.UUID) (*PublicProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive || !product.SaleChannel.SellsOnline() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	stats, err := s.repo.ReviewStatsFor(ctx, []uuid.UUID{product.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: review stats")
	}
	return NewPublicProductDTO(product, stats[product.ID]), nil
}

func (s *service) ownedStore(ctx context.Context, sellerID uuid.UUID) (*models.Store, error) {
	store, err := s.storeRepo.FindBySellerID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found for seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) ownedProduct(ctx context.Context, sellerID, productID uuid.UUID) (*models.Product, error) {
	store, err := s.ownedStore(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.StoreID != store.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to seller")
	}
	return product, nil
}
