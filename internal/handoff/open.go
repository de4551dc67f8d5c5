package handoff

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/certprep/internal/config"
	"github.com/mind-engage/certprep/internal/db"
)

// Open builds the store named by cfg.HandoffDriver. The returned closer
// releases whatever connection the store holds.
func Open(ctx context.Context, cfg config.Config) (Store, io.Closer, error) {
	switch cfg.HandoffDriver {
	case "", "sql":
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("handoff db: %w", err)
		}
		return NewSQLStore(dbh), dbh, nil
	case "fs":
		s, err := NewFSStore(cfg.HandoffPath)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DialTimeout: 5 * time.Second})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("handoff redis %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(rdb, cfg.HandoffTTL), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unsupported handoff driver: %s", cfg.HandoffDriver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
