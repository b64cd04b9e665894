package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/summitops/guest-transport/internal/model"
)

// sessionKeyPrefix namespaces import session keys in redis.
const sessionKeyPrefix = "import:"

// SessionRepo stores in-flight import sessions in redis as JSON blobs
// with a TTL.  Sessions are working state, not records: an abandoned
// upload simply expires, and cancelling one deletes the key without
// ever having touched the guest store.  Every save refreshes the TTL
// so a session stays alive as long as the reviewer keeps working on
// it.
type SessionRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionRepo returns a SessionRepo writing through the given
// client with the given per-session TTL.
func NewSessionRepo(rdb *redis.Client, ttl time.Duration) *SessionRepo {
	return &SessionRepo{rdb: rdb, ttl: ttl}
}

// Save writes the session as JSON under its ID and resets the TTL.
func (r *SessionRepo) Save(ctx context.Context, s *model.ImportSession) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKeyPrefix+s.ID, payload, r.ttl).Err()
}

// Get loads one session by ID.  ErrNotFound is returned when the key
// is missing or has expired.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.ImportSession, error) {
	payload, err := r.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s model.ImportSession
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes one session.  Deleting a missing or expired session
// is not an error; cancel is idempotent.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}
