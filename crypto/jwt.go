package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/IllTzeko/wombokombo-gameserver/domain"
)

// playerClaims carries the account id; fields must be exported for serialization.
type playerClaims struct {
	PlayerId string `json:"player_id"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey []byte
	tokenAge  time.Duration
}

func NewJWTManager(secretKey string, tokenAge time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
		tokenAge:  tokenAge,
	}
}

func (m *JWTManager) Generate(id string, now time.Time) (string, error) {
	claims := playerClaims{
		PlayerId: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenAge)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.UnexpectedTokenGenerationError, err)
	}

	return signedToken, nil
}

// Verify returns the player id embedded in the token, or a domain error
// describing what is wrong with it.
func (m *JWTManager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &playerClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidSigningAlg
		}
		return m.secretKey, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSigningAlg):
			return "", domain.ErrInvalidSigningAlg
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", domain.ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", domain.ErrInvalidTokenSignature
		default:
			return "", domain.ErrCorruptedToken
		}
	}

	claims, ok := token.Claims.(*playerClaims)
	if !ok || !token.Valid {
		return "", domain.ErrCorruptedToken
	}

	return claims.PlayerId, nil
}
