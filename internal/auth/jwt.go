package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// Claims are the session token claims issued by the identity provider.
// Subject is the profile id; the rest is denormalized so scoping never
// needs a profile lookup on the hot path.
type Claims struct {
	OrgID     string `json:"org"`
	Role      string `json:"role"`
	ManagerID string `json:"mgr,omitempty"`
	jwt.RegisteredClaims
}

// SignActor issues an HS256 session token for the actor. Token
// issuance belongs to the identity provider; this signer exists for
// bootstrap and tests.
func SignActor(secret []byte, actor *Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		OrgID: actor.OrgID.String(),
		Role:  string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if actor.ManagerID != nil {
		claims.ManagerID = actor.ManagerID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken parses and validates a session token, returning the
// actor it identifies.
func VerifyToken(secret []byte, tokenStr string) (*Actor, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid claims")
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return nil, fmt.Errorf("invalid org claim: %w", err)
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	actor := &Actor{ID: actorID, OrgID: orgID, Role: role}
	if claims.ManagerID != "" {
		managerID, err := uuid.Parse(claims.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("invalid manager claim: %w", err)
		}
		actor.ManagerID = &managerID
	}

	return actor, nil
}
