// Package server exposes the selection pipeline over HTTP. The pipeline
// itself is transport-agnostic; everything here is boundary plumbing.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blower-selector/internal/common/database"
	"blower-selector/internal/common/logger"
	"blower-selector/internal/conversation"
)

// StateStore keeps conversation state in Redis for clients that pass a
// session id instead of echoing the state themselves. The core never reads
// it; it is a convenience cache at the boundary.
type StateStore struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// NewStateStore creates a Redis-backed conversation state store.
func NewStateStore(client *database.RedisClient, ttl time.Duration, log logger.Logger) *StateStore {
	return &StateStore{redis: client, ttl: ttl, logger: log}
}

func stateKey(sessionID string) string {
	return fmt.Sprintf("conversation:%s", sessionID)
}

// Save stores the state under the session id with the configured TTL.
func (s *StateStore) Save(ctx context.Context, sessionID string, state conversation.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := s.redis.Set(ctx, stateKey(sessionID), data, s.ttl); err != nil {
		s.logger.WithError(err).Error("failed to save conversation state",
			zap.String("session_id", sessionID))
		return err
	}
	return nil
}

// Load fetches the state for a session. The second return value is false
// when the session is unknown or expired.
func (s *StateStore) Load(ctx context.Context, sessionID string) (conversation.State, bool, error) {
	data, err := s.redis.Get(ctx, stateKey(sessionID))
	if err == redis.Nil {
		return conversation.State{}, false, nil
	}
	if err != nil {
		return conversation.State{}, false, fmt.Errorf("failed to load state: %w", err)
	}

	var state conversation.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return conversation.State{}, false, fmt.Errorf("failed to decode state: %w", err)
	}
	return state, true, nil
}

// Delete removes a finished session.
func (s *StateStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, stateKey(sessionID))
}
