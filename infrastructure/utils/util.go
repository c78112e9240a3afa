package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"post-manager/domain/model"
	"post-manager/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

const stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomState returns an alphanumeric nonce of length n from crypto/rand.
func RandomState(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(stateAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate state: %w", err)
		}
		b[i] = stateAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// GenerateToken signs the session claims handed to the browser after login.
func GenerateToken(claims model.SessionClaims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies a session token and returns its claims.
func ParseToken(tokenString, secretKey string) (*model.SessionClaims, error) {
	var claims model.SessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("session token invalid")
	}
	return &claims, nil
}
