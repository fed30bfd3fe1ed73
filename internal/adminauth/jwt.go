// Package adminauth validates admin capability tokens. The gateway does not
// manage roles or identities; it only checks that a presented token was
// signed by the configured key and claims the admin role.
package adminauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "mintgate/pkg/domain-errors"
)

// RoleAdmin is the role claim value required for admin entry points.
const RoleAdmin = "admin"

// Claims carried by admin capability tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service validates HMAC-signed admin tokens.
type Service struct {
	signingKey []byte
}

func New(signingKey string) *Service {
	return &Service{signingKey: []byte(signingKey)}
}

// IssueToken mints an admin token. Exposed for operational tooling and tests;
// production token issuance belongs to the external ACL.
func (s *Service) IssueToken(subject string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateAdminToken checks signature, expiry, and the admin role claim.
func (s *Service) ValidateAdminToken(tokenString string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.Role != RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "admin role required")
	}
	return nil
}
