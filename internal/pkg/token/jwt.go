package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity embedded in a bearer token. Only UserId is
// authoritative; username and email are convenience claims and must never
// drive an authorization decision.
type Claims struct {
	UserId   uint
	Username string
	Email    string
}

// Issuer signs and verifies HS256 bearer tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (i *Issuer) Issue(claims Claims) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     claims.Username,
		"user_id": claims.UserId,
		"email":   claims.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(i.ttl).Unix(),
	})
	return t.SignedString(i.secret)
}

// Verify parses and validates a signed token. It fails on a bad signature,
// a malformed payload, a missing user_id claim, or expiry.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	mapClaims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}

	userId, ok := mapClaims["user_id"].(float64)
	if !ok || userId <= 0 {
		return nil, fmt.Errorf("missing user_id claim")
	}

	claims := &Claims{UserId: uint(userId)}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Username = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	return claims, nil
}
