package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/lamp-demo/internal/logger"
)

// MutationLimitRepository counts mutations per client in Redis using a
// fixed window. The first mutation of a window starts its expiry.
type MutationLimitRepository struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewMutationLimitRepository allows limit mutations per client every window.
func NewMutationLimitRepository(client *redis.Client, limit int64, window time.Duration) *MutationLimitRepository {
	return &MutationLimitRepository{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow records one mutation for clientID and reports whether it is within the limit.
func (r *MutationLimitRepository) Allow(ctx context.Context, clientID string) (bool, error) {
	key := fmt.Sprintf("mutations:%s", clientID)

	var count *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, r.window)
		return nil
	})

	var n int64
	if err == nil {
		n = count.Val()
	}

	logger.Log.Infow("mutation counted",
		"key", key,
		"result", n,
		"limit", r.limit,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return n <= r.limit, nil
}
