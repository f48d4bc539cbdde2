package services

import (
	"context"
	"log"
	"strings"

	"quiz-backend/internal/models"
)

type userStore interface {
	UpsertGoogleUser(ctx context.Context, user *models.User) error
}

type AuthService struct {
	verifier TokenVerifier
	users    userStore
}

func NewAuthService(verifier TokenVerifier, users userStore) *AuthService {
	return &AuthService{verifier: verifier, users: users}
}

// SignIn verifies the credential posted by the identity provider and returns
// the claims to keep in the session. Every verification failure is a
// ForbiddenError so the caller can answer 403 without touching the session.
func (s *AuthService) SignIn(ctx context.Context, credential string) (models.UserClaims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, &ForbiddenError{Message: "Missing credential"}
	}

	claims, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		log.Printf("sign-in rejected: %v", err)
		return nil, &ForbiddenError{Message: "Invalid credential"}
	}

	if s.users != nil {
		user := userFromClaims(claims)
		// The profile row is informational; a failed write must not block sign-in.
		if err := s.users.UpsertGoogleUser(ctx, user); err != nil {
			log.Printf("sign-in: failed to save user %s: %v", user.GoogleID, err)
		}
	}

	return claims, nil
}

func userFromClaims(claims models.UserClaims) *models.User {
	user := &models.User{
		GoogleID: claims.Subject(),
		Email:    claims.Email(),
		FullName: claims.Name(),
	}
	if picture := claims.Picture(); picture != "" {
		user.AvatarURL = &picture
	}
	return user
}
