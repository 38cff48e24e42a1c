package redis

import (
	redis_models "Sweatmate/models/redis"
	redis_utils "Sweatmate/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session records outlive the longest plausible workout but not a forgotten
// crashed one.
const sessionTTL = 24 * time.Hour

// RedisClient handles Redis operations
type RedisClient struct {
	client       *redis.Client
	ctx          context.Context
	sessionLocks sync.Map
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// LockSession hands out the mutex guarding one session record and returns
// its unlock func. The timer's tick loop and the HTTP command paths share
// these locks, so a tick that read the record before a stop can never save
// its stale copy back over the stopped one.
func (rc *RedisClient) LockSession(sessionId string) func() {
	v, _ := rc.sessionLocks.LoadOrStore(sessionId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// SaveWorkoutSession stores a session's timer state in Redis
// Key format: "session:{id}"
// TTL: 24 hours
func (rc *RedisClient) SaveWorkoutSession(session *redis_models.WorkoutSession) error {
	key := redis_utils.FormatSessionKey(session.ID)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error marshaling session data: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, sessionTTL).Err()
}

// GetWorkoutSession retrieves a session's timer state from Redis
// Key format: "session:{id}"
// Returns: WorkoutSession struct or error
func (rc *RedisClient) GetWorkoutSession(sessionId string) (*redis_models.WorkoutSession, error) {
	key := redis_utils.FormatSessionKey(sessionId)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting session data: %v", err)
	}

	var session redis_models.WorkoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("error unmarshaling session data: %v", err)
	}
	return &session, nil
}

// DeleteWorkoutSession removes a session's timer state and drops it from the
// active set in one pipeline.
func (rc *RedisClient) DeleteWorkoutSession(sessionId string) error {
	pipe := rc.client.Pipeline()
	pipe.Del(rc.ctx, redis_utils.FormatSessionKey(sessionId))
	pipe.SRem(rc.ctx, redis_utils.FormatActiveSessionsKey(), sessionId)

	_, err := pipe.Exec(rc.ctx)
	if err != nil {
		return fmt.Errorf("error deleting session data: %v", err)
	}
	return nil
}

// AddActiveSession registers a session id for the tick loop.
func (rc *RedisClient) AddActiveSession(sessionId string) error {
	if err := rc.client.SAdd(rc.ctx, redis_utils.FormatActiveSessionsKey(), sessionId).Err(); err != nil {
		return fmt.Errorf("error adding active session: %v", err)
	}
	return nil
}

// RemoveActiveSession drops a session id from the tick loop's set. The
// session record itself is kept for archival reads.
func (rc *RedisClient) RemoveActiveSession(sessionId string) error {
	if err := rc.client.SRem(rc.ctx, redis_utils.FormatActiveSessionsKey(), sessionId).Err(); err != nil {
		return fmt.Errorf("error removing active session: %v", err)
	}
	return nil
}

// ActiveSessionIDs returns every session id the tick loop must visit.
func (rc *RedisClient) ActiveSessionIDs() ([]string, error) {
	ids, err := rc.client.SMembers(rc.ctx, redis_utils.FormatActiveSessionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing active sessions: %v", err)
	}
	return ids, nil
}

// NextSequence increments and returns the monotonic broadcast sequence for a
// channel. Clients use it to discard reordered deliveries.
func (rc *RedisClient) NextSequence(channelKey string) (int64, error) {
	seq, err := rc.client.Incr(rc.ctx, redis_utils.FormatSequenceKey(channelKey)).Result()
	if err != nil {
		return 0, fmt.Errorf("error incrementing channel sequence: %v", err)
	}
	return seq, nil
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
