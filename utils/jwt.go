package utils

import (
	"errors"
	"time"

	"servicehub/config"

	"github.com/golang-jwt/jwt"
)

// Identity is what a verified token says about the caller.
type Identity struct {
	Subject        string
	Role           string
	OrganizationID string
}

func secretKey() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateToken creates a signed JWT for the given identity. The token expires after
// the specified duration.
func GenerateToken(id Identity, duration time.Duration) (string, error) {
	if len(secretKey()) == 0 {
		return "", errors.New("JWT_SECRET is not configured")
	}
	claims := jwt.MapClaims{
		"sub":  id.Subject,
		"role": id.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	if id.OrganizationID != "" {
		claims["org"] = id.OrganizationID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	if len(secretKey()) == 0 {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// IdentityFromToken validates the token and extracts the sub, role and org claims.
func IdentityFromToken(tokenString string) (Identity, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, errors.New("token does not contain a valid 'sub' claim")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Identity{}, errors.New("token does not contain a valid 'role' claim")
	}
	org, _ := claims["org"].(string)

	return Identity{Subject: sub, Role: role, OrganizationID: org}, nil
}
