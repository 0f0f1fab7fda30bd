package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"NewsDesk/internal/ports"
)

const defaultTTL = 30 * time.Minute

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lock shared by every host that talks to the same server. The TTL
// bounds how long a crashed holder can block others.
type Redis struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

var _ ports.Locker = (*Redis)(nil)

// NewRedis returns a lock stored under key.
func NewRedis(client redis.UniversalClient, key string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, key: key, ttl: ttl}
}

// Acquire sets the key if absent. Release only deletes the key while it still
// carries this holder's token.
func (r *Redis) Acquire(ctx context.Context) (func() error, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", r.key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: redis key %s", ErrBusy, r.key)
	}

	release := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Err(); err != nil {
			return fmt.Errorf("redis unlock %s: %w", r.key, err)
		}
		return nil
	}
	return release, nil
}
