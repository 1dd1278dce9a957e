package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	"github.com/sreejithpv/keralacart-backend/pkg/types"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ActorID   uuid.UUID
	ActorKind enums.ActorKind
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. Sellers and
// buyers carry the same claim shape, distinguished by actor_kind.
type AccessTokenClaims struct {
	ActorID   uuid.UUID       `json:"actor_id"`
	ActorKind enums.ActorKind `json:"actor_kind"`
	jwt.RegisteredClaims
}

// Actor rebuilds the tagged actor reference held by the claims.
func (c *AccessTokenClaims) Actor() types.Actor {
	return types.Actor{Kind: c.ActorKind, ID: c.ActorID}
}
