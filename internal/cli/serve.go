package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flexpos/internal/api"
	"github.com/matzehuels/flexpos/pkg/store"
)

type serveOpts struct {
	api   api.Config
	store store.Config
}

// serveCommand creates the serve command, which exposes the engine over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the positioning engine over HTTP",
		Long: `Serve the positioning engine over HTTP.

POST /v1/place solves a single placement. /v1/overlays keeps positioner
sessions so locking and bounding-box state survive between requests.
Sessions expire after --session-ttl without use.

Session stores:
  memory  in-process (default; lost on restart)
  file    JSON files under --store-dir
  redis   Redis at --redis-addr
  mongo   MongoDB at --mongo-uri`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.api.Addr, "addr", api.DefaultAddr, "listen address")
	f.DurationVar(&opts.api.SessionTTL, "session-ttl", store.DefaultTTL, "idle time before a session expires")
	f.DurationVar(&opts.api.CleanupInterval, "cleanup-interval", api.DefaultCleanupInterval, "how often expired sessions are removed")
	f.StringVar(&opts.store.Backend, "store", store.BackendMemory, "session store: "+strings.Join(store.Backends, ", "))
	f.StringVar(&opts.store.Dir, "store-dir", "", "directory for the file store (default: <cache dir>/sessions)")
	f.StringVar(&opts.store.RedisAddr, "redis-addr", "localhost:6379", "Redis address")
	f.StringVar(&opts.store.RedisPassword, "redis-password", "", "Redis password")
	f.IntVar(&opts.store.RedisDB, "redis-db", 0, "Redis database")
	f.StringVar(&opts.store.MongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	f.StringVar(&opts.store.MongoDatabase, "mongo-db", appName, "MongoDB database")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	if opts.store.Backend == store.BackendFile && opts.store.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return fmt.Errorf("get cache dir: %w", err)
		}
		opts.store.Dir = filepath.Join(dir, "sessions")
	}

	st, err := store.Open(ctx, opts.store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", opts.store.Backend, err)
	}
	defer st.Close()

	printSuccess("Serving flexpos")
	printKeyValue("Address", "http://"+opts.api.Addr)
	printKeyValue("Store", storeLabel(opts.store))
	printKeyValue("Session TTL", opts.api.SessionTTL.Round(time.Second).String())
	printNewline()
	printNextStep("Try", "curl http://"+opts.api.Addr+"/healthz")

	return api.New(st, opts.api, c.Logger).ListenAndServe(ctx)
}

func storeLabel(cfg store.Config) string {
	switch cfg.Backend {
	case store.BackendFile:
		return "file " + cfg.Dir
	case store.BackendRedis:
		return "redis " + cfg.RedisAddr
	case store.BackendMongo:
		return "mongo " + cfg.MongoDatabase
	default:
		return store.BackendMemory
	}
}
