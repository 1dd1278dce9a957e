package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
	"github.com/sreejithpv/keralacart-backend/pkg/types"
)

// Service exposes read access to the stock ledger. Writes happen only through
// the inventory guard, which talks to the repository inside its transaction;
// nothing else in the codebase is handed the write surface.
type Service interface {
	ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]EntryDTO, string, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]EntryDTO, string, error)
}

// EntryDTO is the read model for one ledger entry.
type EntryDTO struct {
	ID           uuid.UUID         `json:"id"`
	ProductID    uuid.UUID         `json:"product_id"`
	ActorKind    enums.ActorKind   `json:"actor_kind"`
	ActorID      uuid.UUID         `json:"actor_id"`
	Action       enums.StockAction `json:"action"`
	ChangeTotal  int               `json:"change_total"`
	ChangeOnline int               `json:"change_online"`
	Note         *string           `json:"note,omitempty"`
	CreatedAt    string            `json:"created_at"`
}

// Actor rebuilds the tagged actor reference for an entry.
func (e EntryDTO) Actor() types.Actor {
	return types.Actor{Kind: e.ActorKind, ID: e.ActorID}
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]EntryDTO, string, error) {
	if sellerID == uuid.Nil {
		return nil, "", fmt.Errorf("seller id is required")
	}
	entries, next, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, "", err
	}
	return mapEntries(entries), next, nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]EntryDTO, string, error) {
	if productID == uuid.Nil {
		return nil, "", fmt.Errorf("product id is required")
	}
	entries, next, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, "", err
	}
	return mapEntries(entries), next, nil
}

func mapEntries(entries []models.StockHistory) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, EntryDTO{
			ID:           entry.ID,
			ProductID:    entry.ProductID,
			ActorKind:    entry.ActorKind,
			ActorID:      entry.ActorID,
			Action:       entry.Action,
			ChangeTotal:  entry.ChangeTotal,
			ChangeOnline: entry.ChangeOnline,
			Note:         entry.Note,
			CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}
