package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown, expired, or ended sessions.
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "sess:"

// Session is the server-tracked record behind a session token.
type Session struct {
	Identity
	IssuedAt time.Time `json:"issued_at"`
}

// SessionStore issues and validates opaque session tokens backed by Redis.
// Ending a session deletes the record, so a token is unusable the moment
// logout returns.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore creates a store whose sessions expire after ttl.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// NewRedisClient connects to the Redis instance at the given URL.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Start issues a new session token for ident. The role carried by the session
// is fixed at issuance.
func (s *SessionStore) Start(ctx context.Context, ident Identity) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	sess := Session{Identity: ident, IssuedAt: time.Now().UTC()}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKeyPrefix+token, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get resolves a token to the identity it was issued for.
func (s *SessionStore) Get(ctx context.Context, token string) (*Identity, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	ident := sess.Identity
	return &ident, nil
}

// End invalidates the session immediately. Ending an already-ended session
// is a no-op.
func (s *SessionStore) End(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
