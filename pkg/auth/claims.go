package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/propnest/pdc-engine/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ActorID uuid.UUID
	Role    enums.ActorRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT the gateway issues to callers.
type AccessTokenClaims struct {
	ActorID uuid.UUID       `json:"actor_id"`
	Role    enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
