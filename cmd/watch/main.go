package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/realtime"
)

type options struct {
	wsURL          string
	apiURL         string
	basePath       string
	token          string
	reconnectDelay time.Duration
	prefetch       []string
	verbose        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow realtime tracker events",
		Long: `Connects to the tracker event stream, keeps a local query cache in step
with every mutation and prints a toast for each event.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.wsURL, "ws-url", "ws://localhost:8000/api/ws", "websocket endpoint")
	f.StringVar(&opts.apiURL, "api-url", "http://localhost:8000", "REST origin used to refetch invalidated queries")
	f.StringVar(&opts.basePath, "base-path", "/api", "API base path")
	f.StringVar(&opts.token, "token", os.Getenv("TRACKER_TOKEN"), "JWT (defaults to $TRACKER_TOKEN)")
	f.DurationVar(&opts.reconnectDelay, "reconnect-delay", realtime.DefaultReconnectDelay, "pause between a dropped connection and the next attempt")
	f.StringSliceVar(&opts.prefetch, "prefetch", nil, "collections to load and keep fresh, e.g. projects,tasks")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log cache operations")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	if opts.token == "" {
		return fmt.Errorf("a token is required (--token or TRACKER_TOKEN)")
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	targets := realtime.DefaultTargets(opts.basePath)
	for _, plural := range opts.prefetch {
		if _, ok := kindByPlural(plural); !ok {
			return fmt.Errorf("unknown collection %q", plural)
		}
	}

	cache := realtime.NewQueryCache()
	notifier := realtime.LogNotifier{Logger: logger}
	api := realtime.NewAPIClient(realtime.APIConfig{
		BaseURL: opts.apiURL,
		Token:   opts.token,
	}, cache, notifier, logger)
	router := realtime.NewRouter(cache, targets, notifier, logger)

	for _, plural := range opts.prefetch {
		kind, _ := kindByPlural(plural)
		if _, err := api.Get(ctx, targets.CollectionPath(kind)); err != nil {
			logger.Warn("Prefetch failed", zap.String("collection", plural), zap.Error(err))
		}
	}

	conn := realtime.NewConnectionManager(realtime.ConnConfig{
		URL:            opts.wsURL,
		Token:          opts.token,
		ReconnectDelay: opts.reconnectDelay,
	}, nil, &refetcher{ctx: ctx, router: router, cache: cache, api: api, logger: logger}, logger,
		realtime.WithStatusHook(func(s realtime.Status) {
			logger.Info("Connection status", zap.String("status", s.String()))
		}),
	)

	if err := conn.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return conn.Close()
}

// refetcher routes a frame and then reloads the queries it marked stale
type refetcher struct {
	ctx    context.Context
	router *realtime.Router
	cache  *realtime.QueryCache
	api    *realtime.APIClient
	logger *zap.Logger
}

func (r *refetcher) Handle(frame []byte) {
	r.router.Handle(frame)

	for _, key := range r.cache.Keys() {
		if !r.cache.IsStale(key) {
			continue
		}
		if _, err := r.api.Get(r.ctx, key); err != nil {
			r.logger.Warn("Refetch failed", zap.String("key", key), zap.Error(err))
			continue
		}
		r.logger.Debug("Refetched", zap.String("key", key))
	}
}

func kindByPlural(plural string) (domain.Kind, bool) {
	for _, k := range domain.Kinds() {
		if k.Plural() == plural {
			return k, true
		}
	}
	return "", false
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
