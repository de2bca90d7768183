package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quiz-platform/internal/app"
	"quiz-platform/internal/auth"
	"quiz-platform/internal/config"
	"quiz-platform/internal/infra/memory"
	redisinfra "quiz-platform/internal/infra/redis"
	"quiz-platform/internal/infra/telegram"
	transport "quiz-platform/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP API (and the Telegram bot when a token is configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "3000"
	}

	if cfg.InsecureSecret() {
		log.Printf("WARNING: auth.jwt_secret is unset or the public default; anyone can forge admin tokens. Set JWT_SECRET.")
	}

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	var (
		locks app.Locker        = memory.NewKeyedLocker()
		chats app.ChatDirectory = memory.NewChatDirectory()
	)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		locks = redisinfra.NewLocker(redisClient, config.TTLDuration(cfg.Redis.LockTTL, 10*time.Second))
		chats = redisinfra.NewChatDirectory(redisClient)
		log.Printf("redis: submission locks and chat bindings at %s", cfg.Redis.Addr)
	}

	codeTTL := config.TTLDuration(cfg.Verification.CodeTTL, app.DefaultCodeTTL)
	var (
		bot      *telegram.Bot
		notifier app.Notifier
	)
	if cfg.Telegram.Token != "" {
		bot, err = telegram.New(cfg.Telegram.Token,
			config.TTLDuration(cfg.Telegram.PollTimeout, 10*time.Second), codeTTL)
		if err != nil {
			return err
		}
		notifier = bot
	} else {
		log.Printf("telegram: no bot token, verification codes are returned in responses")
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTTL))
	feed := app.NewResultFeed()
	verification := app.NewVerificationService(backend, chats, notifier, codeTTL)
	services := transport.Services{
		Accounts:     app.NewAccountService(backend, auth.NewHasher(cfg.Auth.PasswordCost), tokens),
		Catalog:      app.NewCatalogService(backend),
		Submissions:  app.NewSubmissionService(backend, locks, feed),
		Verification: verification,
		Feed:         feed,
	}

	if bot != nil {
		bot.Register(verification)
		go bot.Start()
		defer bot.Stop()
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewHandler(services, tokens).Router(cfg.CORS.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz platform on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
