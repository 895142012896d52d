package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a verification session is absent or expired.
var ErrSessionNotFound = errors.New("verification session not found")

// Config holds Redis connection parameters.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Cache wraps the Redis client for token revocation and verification sessions.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// Close closes the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// --- Token revocation ---

func revocationKey(jti string) string {
	return "revoked:" + jti
}

// RevokeToken marks a token ID as revoked until its natural expiry.
func (c *Cache) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return c.client.Set(ctx, revocationKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether a token ID has been revoked.
func (c *Cache) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Identity verification sessions ---

// VerificationSession tracks an in-flight identity proof request.
type VerificationSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RequestID string    `json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(id string) string {
	return "verification:" + id
}

// StoreVerificationSession persists a verification session with a TTL.
func (c *Cache) StoreVerificationSession(ctx context.Context, session VerificationSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal verification session: %w", err)
	}
	return c.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

// GetVerificationSession retrieves a verification session by ID.
func (c *Cache) GetVerificationSession(ctx context.Context, id string) (*VerificationSession, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var session VerificationSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification session: %w", err)
	}
	return &session, nil
}

// DeleteVerificationSession removes a verification session.
func (c *Cache) DeleteVerificationSession(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionKey(id)).Err()
}
