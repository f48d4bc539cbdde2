package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	CookieName = "quiz_session"
	keyPrefix  = "session:"
)

var ErrNotFound = errors.New("session not found")

// Backend is the key-value storage behind the Store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

type Store struct {
	backend Backend
	codec   cookieCodec
	ttl     time.Duration
	secure  bool
	now     func() time.Time
}

func NewStore(backend Backend, secret string, ttl time.Duration, secure bool) *Store {
	return &Store{
		backend: backend,
		codec:   cookieCodec{secret: []byte(secret), ttl: ttl},
		ttl:     ttl,
		secure:  secure,
		now:     time.Now,
	}
}

// Load returns the session named by the request cookie. A missing, forged or
// expired cookie yields a fresh empty session; only backend failures are errors.
func (s *Store) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return s.newSession(), nil
	}

	id, err := s.codec.decode(cookie.Value)
	if err != nil {
		return s.newSession(), nil
	}

	raw, err := s.backend.Get(ctx, keyPrefix+id)
	if errors.Is(err, ErrNotFound) {
		return s.newSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess := &Session{ID: id}
	if err := json.Unmarshal(raw, &sess.Data); err != nil {
		return s.newSession(), nil
	}
	return sess, nil
}

// Save persists the session and refreshes its cookie. It must be called
// before the response body is written.
func (s *Store) Save(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	raw, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.backend.Set(ctx, keyPrefix+sess.ID, raw, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	now := s.now()
	value, err := s.codec.encode(sess.ID, now)
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	sess.isNew = false
	return nil
}

func (s *Store) newSession() *Session {
	return &Session{ID: uuid.NewString(), isNew: true}
}
