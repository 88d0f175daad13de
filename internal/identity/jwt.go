package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// parseHS256 verifies token against secret and returns the user it names.
func parseHS256(token string, secret []byte) (*User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("jwt invalid")
	}

	id, err := uuid.Parse(getStringClaim(claims, "sub"))
	if err != nil {
		return nil, fmt.Errorf("jwt subject: %w", err)
	}
	return &User{
		ID:           id,
		Email:        getStringClaim(claims, "email"),
		UserMetadata: getMapClaim(claims, "user_metadata"),
	}, nil
}

// signHS256 issues a token in the shape GoTrue uses for authenticated users.
func signHS256(user *User, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  "authenticated",
		"aud":   "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if len(user.UserMetadata) > 0 {
		claims["user_metadata"] = user.UserMetadata
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func getStringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getMapClaim(claims jwt.MapClaims, key string) map[string]interface{} {
	if val, ok := claims[key]; ok {
		if m, ok := val.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}
