package factory

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisConnection connects to a single redis server, or to the master
// behind sentinels when sentinel addresses are configured.
func NewRedisConnection(ctx context.Context, appCnf *config.AppConfig) error {
	rdb := newRedisClient(&appCnf.RedisInfo)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	if info, err := rdb.Info(ctx, "server").Result(); err == nil {
		appCnf.Logger.WithField("version", redisServerVersion(info)).Info("successfully connected to Redis")
	}

	appCnf.RDS = rdb
	return nil
}

func newRedisClient(rf *config.RedisInfo) *redis.Client {
	var tlsConfig *tls.Config
	if rf.UseTLS {
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	if len(rf.SentinelAddresses) > 0 {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			SentinelAddrs:    rf.SentinelAddresses,
			SentinelUsername: rf.SentinelUsername,
			SentinelPassword: rf.SentinelPassword,
			MasterName:       rf.MasterName,
			Username:         rf.Username,
			Password:         rf.Password,
			DB:               rf.DBName,
			PoolSize:         rf.PoolSize,
			DialTimeout:      rf.DialTimeout,
			TLSConfig:        tlsConfig,
		})
	}

	return redis.NewClient(&redis.Options{
		Addr:        rf.Host,
		Username:    rf.Username,
		Password:    rf.Password,
		DB:          rf.DBName,
		PoolSize:    rf.PoolSize,
		DialTimeout: rf.DialTimeout,
		TLSConfig:   tlsConfig,
	})
}

// redisServerVersion reads redis_version from an INFO server reply.
func redisServerVersion(info string) string {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "redis_version:"); ok {
			return v
		}
	}
	return "unknown"
}
