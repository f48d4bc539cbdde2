package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `json:"id"`
	GoogleID    string     `json:"-"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	AvatarURL   *string    `json:"avatar_url"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// UserClaims is the verified identity-token payload kept in the session.
type UserClaims map[string]interface{}

func (c UserClaims) str(key string) string {
	v, _ := c[key].(string)
	return v
}

func (c UserClaims) Subject() string { return c.str("sub") }
func (c UserClaims) Email() string   { return c.str("email") }
func (c UserClaims) Name() string    { return c.str("name") }
func (c UserClaims) Picture() string { return c.str("picture") }
