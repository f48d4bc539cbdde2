package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"quiz-backend/internal/models"
)

var ErrInvalidCredential = errors.New("invalid identity credential")

// TokenVerifier validates a third-party identity token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (models.UserClaims, error)
}

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// GoogleVerifier checks Google Sign-In ID tokens: signature against Google's
// published keys, expiry, audience (our client id) and issuer.
type GoogleVerifier struct {
	clientID  string
	validator *idtoken.Validator
}

func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is not configured")
	}

	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}

	return &GoogleVerifier{clientID: clientID, validator: validator}, nil
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (models.UserClaims, error) {
	payload, err := v.validator.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if !googleIssuers[payload.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidCredential, payload.Issuer)
	}

	claims := models.UserClaims(payload.Claims)
	if claims.Subject() == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}

	return claims, nil
}
