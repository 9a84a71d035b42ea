// Package candidateauth validates candidate bearer tokens issued by the
// external identity service. Token issuance lives outside this system; only
// verification and claim extraction happen here.
package candidateauth

import (
	"fmt"
	"time"

	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// CandidateClaims are the claims this pipeline cares about.
type CandidateClaims struct {
	CandidateID kernel.CandidateID
	ExpiresAt   time.Time
}

// TokenService verifies HS256 candidate tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a verifier sharing the identity service's secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// ValidateCandidateToken parses and verifies a token, returning its claims.
func (s *TokenService) ValidateCandidateToken(tokenString string) (*CandidateClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	candidateID, _ := claims["candidate_id"].(string)
	if candidateID == "" {
		// Fall back to the subject claim for tokens minted without the
		// candidate_id extension.
		candidateID, _ = claims["sub"].(string)
	}
	if candidateID == "" {
		return nil, fmt.Errorf("token carries no candidate identity")
	}

	result := &CandidateClaims{CandidateID: kernel.CandidateID(candidateID)}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}
	return result, nil
}
