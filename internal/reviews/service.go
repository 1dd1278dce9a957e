package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
)

// Service gates product reviews behind verified delivered purchases.
type Service interface {
	CanReview(ctx context.Context, buyerID, productID uuid.UUID) (*EligibilityDTO, error)
	Create(ctx context.Context, buyerID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]ReviewDTO, string, error)
}

// EligibilityDTO answers the storefront's "can I review this" check.
type EligibilityDTO struct {
	HasPurchased    bool `json:"has_purchased"`
	AlreadyReviewed bool `json:"already_reviewed"`
}

// CreateReviewInput carries a new review payload.
type CreateReviewInput struct {
	ProductID uuid.UUID
	Rating    int
	Comment   *string
}

// ReviewDTO is the review payload returned to clients.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type service struct {
	repo Repository
}

// NewService constructs a review service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	return &service{repo: repo}, nil
}

// CanReview reports purchase and duplicate state without writing anything.
func (s *service) CanReview(ctx context.Context, buyerID, productID uuid.UUID) (*EligibilityDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	purchased, err := s.repo.HasDeliveredPurchase(ctx, buyerID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchases")
	}

	reviewed := true
	if _, err := s.repo.FindByProductAndBuyer(ctx, productID, buyerID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
		}
		reviewed = false
	}

	return &EligibilityDTO{HasPurchased: purchased, AlreadyReviewed: reviewed}, nil
}

// Create writes the review after the gate passes. The unique index on
// (product_id, buyer_id) backs up the duplicate check.
func (s *service) Create(ctx context.Context, buyerID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	eligibility, err := s.CanReview(ctx, buyerID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !eligibility.HasPurchased {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "reviews require a delivered purchase")
	}
	if eligibility.AlreadyReviewed {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyReviewed, "product already reviewed")
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		BuyerID:   buyerID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert review")
	}
	return newReviewDTO(review), nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]ReviewDTO, string, error) {
	rows, next, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newReviewDTO(&rows[i]))
	}
	return out, next, nil
}

func newReviewDTO(review *models.Review) *ReviewDTO {
	return &ReviewDTO{
		ID:        review.ID,
		ProductID: review.ProductID,
		BuyerID:   review.BuyerID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}
