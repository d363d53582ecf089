package cache

import (
	"context"
	"time"

	redis_store "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// R is the shared redis client, S wraps it for the gocache marshaler.
var (
	R *redis.Client
	S *redis_store.RedisStore
)

func NewStore() error {
	R = redis.NewClient(&redis.Options{
		Addr:     viper.GetString("cache.addr"),
		Username: viper.GetString("cache.username"),
		Password: viper.GetString("cache.password"),
		DB:       viper.GetInt("cache.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := R.Ping(ctx).Err(); err != nil {
		return err
	}

	S = redis_store.NewRedis(R)
	return nil
}
