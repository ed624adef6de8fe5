package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/steelhall/steelhall/internal/cache"
	"github.com/steelhall/steelhall/internal/config"
	"github.com/steelhall/steelhall/internal/db"
	"github.com/steelhall/steelhall/internal/events"
	"github.com/steelhall/steelhall/internal/handlers"
	"github.com/steelhall/steelhall/internal/logging"
	"github.com/steelhall/steelhall/internal/media"
	"github.com/steelhall/steelhall/internal/routes"
	"github.com/steelhall/steelhall/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server operations",
	Long:  "Start and manage the Steelhall HTTP server",
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initSystemDB(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		logger, closeLog, err := logging.New(config.GetString("log.level"), config.GetString("log.file"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()

		if err := runServer(logger); err != nil {
			logger.Error("server stopped", "error", err)
			closeLog()
			os.Exit(1)
		}
	},
}

func runServer(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)

	listingCache := cache.New(
		config.GetString("cache.redis_addr"),
		config.GetString("cache.redis_password"),
		config.GetInt("cache.redis_db"),
	)
	if closer, ok := listingCache.(io.Closer); ok {
		defer closer.Close()
	}
	if r, ok := listingCache.(*cache.Redis); ok {
		if err := r.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, listings will be served uncached until it recovers", "error", err)
		}
	}

	publisher, closeEvents, err := events.Connect(config.GetString("events.nats_url"), config.GetString("events.subject_prefix"))
	if err != nil {
		return err
	}
	defer closeEvents()

	storage, err := newStorage()
	if err != nil {
		return err
	}

	h := handlers.New(handlers.Handlers{
		DB:             db.GetDB(),
		Cache:          listingCache,
		CacheTTL:       config.GetDuration("cache.ttl"),
		Events:         publisher,
		Mailer:         newMailer(),
		Storage:        storage,
		MaxUploadBytes: int64(config.GetInt("storage.max_upload_mb")) << 20,
		Logger:         logger,
	})

	router, err := server.NewRouter(h, routes.Default(), server.Options{
		BlockedIPs:       config.GetStringSlice("security.blocked_ips"),
		AdminAllowedIPs:  config.GetStringSlice("security.admin_allowed_ips"),
		LoginPerMinute:   config.GetInt("security.login_attempts_per_minute"),
		ContactPerMinute: config.GetInt("security.contact_posts_per_minute"),
		HSTS:             config.GetBool("server.behind_proxy"),
		Logger:           logger,
	})
	if err != nil {
		return err
	}
	defer router.Close()

	addr := ":" + config.GetString("server.http_port")
	fmt.Printf("Starting HTTP server on %s\n", addr)
	return server.Serve(ctx, addr, router, logger)
}

// newStorage picks local disk or S3 from storage.type
func newStorage() (media.Storage, error) {
	switch config.GetString("storage.type") {
	case "", "local":
		dir := config.GetString("storage.media_dir")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create media directory: %w", err)
		}
		return media.NewLocalStorage(dir), nil
	case "s3":
		cfg := media.S3Config{
			Bucket:    config.GetString("storage.s3_bucket"),
			Region:    config.GetString("storage.s3_region"),
			Endpoint:  config.GetString("storage.s3_endpoint"),
			AccessKey: config.GetString("storage.s3_access_key"),
			SecretKey: config.GetString("storage.s3_secret_key"),
		}
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("storage.s3_bucket is required for s3 storage")
		}
		return media.NewS3Storage(media.NewS3Client(cfg), cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", config.GetString("storage.type"))
	}
}

func init() {
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)
}
