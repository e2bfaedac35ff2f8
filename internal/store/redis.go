package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the shared client used for the notification queue.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client from config. Timeouts stay at the driver
// defaults: the only blocking call in this system is the worker's BRPOP,
// and go-redis derives that deadline from the command's own timeout
// argument rather than the client setting.
func NewRedis(addr, password string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		MinIdleConns: 1,
	})
	return &Redis{Client: client}
}

// Healthy verifies connectivity with a ping.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
