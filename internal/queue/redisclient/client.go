package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// nudgeKey is a list the API pushes to whenever it enqueues mail. The worker
// blocks on it so fresh jobs are picked up before the next poll tick.
const nudgeKey = "campushub:mail:nudge"

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  -1, // BRPOP manages its own deadline
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Nudge tells any listening worker that new mail is queued. The value is
// meaningless; only the wakeup matters.
func (c *Client) Nudge(ctx context.Context) error {
	return c.redisdb.LPush(ctx, nudgeKey, "1").Err()
}

// WaitNudge blocks up to timeout for a nudge. Returns true when one arrived,
// false on a quiet timeout.
func (c *Client) WaitNudge(ctx context.Context, timeout time.Duration) (bool, error) {
	_, err := c.redisdb.BRPop(ctx, timeout, nudgeKey).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
