package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/smartbill/smartbill/internal/jwt"
)

// stubTokener satisfies the token interfaces of all protected handlers.
type stubTokener struct {
	claims     *jwt.Claims
	extractErr error
	claimsErr  error
}

func (s *stubTokener) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	if s.extractErr != nil {
		return "", s.extractErr
	}
	return "token", nil
}

func (s *stubTokener) GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error) {
	if s.claimsErr != nil {
		return nil, s.claimsErr
	}
	return s.claims, nil
}

func validTokener() *stubTokener {
	return &stubTokener{claims: &jwt.Claims{UserID: 1, Username: "alice"}}
}

func missingTokener() *stubTokener {
	return &stubTokener{extractErr: errors.New("authorization header missing")}
}

func badClaimsTokener() *stubTokener {
	return &stubTokener{claimsErr: errors.New("invalid token")}
}
