package types

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/pkg/enums"
)

// Actor identifies who performed a stock mutation or placed an order. Sellers
// and buyers are separate tables, so the pair (kind, id) is the only stable
// reference.
type Actor struct {
	Kind enums.ActorKind
	ID   uuid.UUID
}

// SellerActor builds a seller-tagged actor.
func SellerActor(id uuid.UUID) Actor {
	return Actor{Kind: enums.ActorKindSeller, ID: id}
}

// BuyerActor builds a buyer-tagged actor.
func BuyerActor(id uuid.UUID) Actor {
	return Actor{Kind: enums.ActorKindBuyer, ID: id}
}

// IsSeller reports whether the actor is a seller.
func (a Actor) IsSeller() bool {
	return a.Kind == enums.ActorKindSeller
}

// IsBuyer reports whether the actor is a buyer.
func (a Actor) IsBuyer() bool {
	return a.Kind == enums.ActorKindBuyer
}

// Validate checks that the actor carries a known kind and a real id.
func (a Actor) Validate() error {
	if !a.Kind.IsValid() {
		return fmt.Errorf("invalid actor kind %q", a.Kind)
	}
	if a.ID == uuid.Nil {
		return fmt.Errorf("actor id is required")
	}
	return nil
}

// String implements fmt.Stringer.
func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.ID)
}
