package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/utils"
)

// ConnectOptions defines the Redis client and its startup retry behavior.
type ConnectOptions struct {
	Addr         string // ex: "localhost:6379"
	User         string
	Password     string
	RedisDB      int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // initial wait between retries, doubled each time (ex: 2s)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn for this many attempts, then log errors
}

func (o ConnectOptions) backoff() utils.Backoff {
	return utils.Backoff{
		Total:       o.ConnectTimeout,
		Initial:     o.RetryInterval,
		Max:         o.MaxWait,
		PingTimeout: o.PingTimeout,
		WarnAfter:   o.WarnThreshold,
	}
}

// New creates a Redis client and pings it with exponential backoff until
// ConnectTimeout elapses. The client is closed when no ping succeeds.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	b := opts.backoff()
	if err := b.Validate(); err != nil {
		log.Error("invalid redis connect options", logger.Error(err))
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if _, err := utils.PingUntilReady(ctx, "redis", opts.Addr, b, ping, log); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
