// Package redisstore keeps authenticated sessions in Redis: an opaque token
// handed to the mini app maps to the local user id with a sliding TTL.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"marketbot/config"
	"marketbot/pkg/apperr"
	"marketbot/pkg/logger"
)

type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.ILogger
}

func New(ctx context.Context, cfg config.Config, log logger.ILogger) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect Redis", logger.Error(err))
		return nil, err
	}

	log.Info("Redis connected")

	return &SessionStore{
		client: client,
		ttl:    time.Duration(cfg.SessionTTLDays) * 24 * time.Hour,
		log:    log,
	}, nil
}

func sessionKey(token string) string {
	return "session:" + token
}

// Create issues a fresh token for the user.
func (s *SessionStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), userID, s.ttl).Err(); err != nil {
		s.log.Error("failed to store session", logger.Error(err))
		return "", err
	}
	return token, nil
}

// Resolve maps a token back to a user id and refreshes the TTL.
func (s *SessionStore) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, apperr.ErrNotAuthenticated
	}
	userID, err := s.client.Get(ctx, sessionKey(token)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, apperr.ErrNotAuthenticated
		}
		s.log.Error("failed to resolve session", logger.Error(err))
		return 0, err
	}
	s.client.Expire(ctx, sessionKey(token), s.ttl)
	return userID, nil
}

// Delete drops a session token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}
