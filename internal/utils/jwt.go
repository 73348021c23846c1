package utils

import (
	"fmt"
	"time"

	"go-task-organizer/internal/config"

	"github.com/golang-jwt/jwt/v4"
)

// TokenSubject identifies tokens issued for the organizer API.
const TokenSubject = "organizer"

// GenerateToken signs a token for the organizer subject that expires after
// the configured JWT lifetime.
func GenerateToken(cfg *config.Config, now time.Time) (string, error) {
	ttl, err := cfg.JWT.TTL()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"sub": TokenSubject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// ParseToken validates a token signed with secret.
func ParseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if sub, _ := claims["sub"].(string); sub != TokenSubject {
		return nil, fmt.Errorf("invalid token subject")
	}
	return claims, nil
}
