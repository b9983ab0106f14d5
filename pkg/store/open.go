package store

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/flexpos/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the supported backends.
var Backends = []string{BackendMemory, BackendFile, BackendRedis, BackendMongo}

// Config selects and configures a backend.
type Config struct {
	Backend string

	Dir string // file

	RedisAddr     string // redis
	RedisPassword string
	RedisDB       int

	MongoURI      string // mongo
	MongoDatabase string

	// ConnectAttempts and ConnectDelay control how often connecting to a
	// remote backend is retried. Zero values select the defaults.
	ConnectAttempts int
	ConnectDelay    time.Duration
}

// Open constructs the configured backend. An empty backend selects memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	attempts, delay := cfg.ConnectAttempts, cfg.ConnectDelay
	if attempts <= 0 {
		attempts = DefaultConnectAttempts
	}
	if delay <= 0 {
		delay = DefaultConnectDelay
	}
	switch cfg.Backend {
	case "", BackendMemory:
		s = NewMemoryStore()
	case BackendFile:
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = retry(ctx, attempts, delay, func() (Store, error) {
			return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		})
	case BackendMongo:
		s, err = retry(ctx, attempts, delay, func() (Store, error) {
			return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (must be one of: %s)",
			cfg.Backend, strings.Join(Backends, ", "))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
