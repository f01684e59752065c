// Package identity validates the bearer tokens that carry the caller's actor.
package identity

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

// Claims are the access token claims. Subject carries the integer user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Validator checks HS256 tokens signed with a shared key.
type Validator struct {
	signingKey []byte
	issuer     string
}

func NewValidator(signingKey, issuer string) *Validator {
	return &Validator{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Issue signs a token for actor. Issuance belongs to the identity provider;
// this exists for local tooling and tests.
func (v *Validator) Issue(actor id.Actor, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(v.signingKey)
}

// ValidateToken returns the actor named by a valid token.
func (v *Validator) ValidateToken(tokenString string) (id.Actor, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token subject must be a user id")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token role is not recognised")
	}
	return id.Actor{ID: id.UserID(userID), Role: role}, nil
}
