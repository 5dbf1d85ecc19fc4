package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/supapay/auth-api/internal/config"
	"github.com/supapay/auth-api/internal/pkg/id"
)

// Token purposes. Tokens are tagged so a session token can never be replayed
// as a password-reset authorization or the other way around.
const (
	PurposeSession = "session"
	PurposeReset   = "password_reset"
)

// Claims holds the JWT payload fields.
type Claims struct {
	AccountID   string `json:"account_id"`
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
	Purpose     string `json:"purpose"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{privateKey: privKey, publicKey: pubKey}, nil
}

// NewProviderFromKey builds a provider from an in-memory key pair.
func NewProviderFromKey(key *rsa.PrivateKey) *Provider {
	return &Provider{privateKey: key, publicKey: &key.PublicKey}
}

// Sign issues a purpose-tagged token for the account with the given validity
// window. Each token carries a unique jti so two tokens issued in the same
// second are still distinct strings.
func (p *Provider) Sign(accountID, email, accountType, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID:   accountID,
		Email:       email,
		AccountType: accountType,
		Purpose:     purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// Verify parses the token, checks the signature and expiry, and returns the
// claims. Purpose enforcement is the caller's responsibility since the wrong
// purpose maps to a different wire error than an invalid token.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
