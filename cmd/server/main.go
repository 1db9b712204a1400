// Command server runs the Chatter API: auth endpoints, the current-user
// route and the background queue worker draining persistence and email jobs.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chatterhq/chatter/modules/auth"
	"github.com/chatterhq/chatter/modules/user"
	"github.com/chatterhq/chatter/pkg/config"
	"github.com/chatterhq/chatter/pkg/email"
	"github.com/chatterhq/chatter/pkg/httpserver"
	"github.com/chatterhq/chatter/pkg/jwt"
	"github.com/chatterhq/chatter/pkg/logger"
	mongodb "github.com/chatterhq/chatter/pkg/mongo"
	"github.com/chatterhq/chatter/pkg/queue"
	redisconn "github.com/chatterhq/chatter/pkg/redis"
	"github.com/chatterhq/chatter/pkg/storage"
)

type appConfig struct {
	Environment   string        `env:"ENVIRONMENT" envDefault:"development"`
	ServiceName   string        `env:"SERVICE_NAME" envDefault:"chatter-server"`
	ClientURL     string        `env:"CLIENT_URL,required"`
	JWTSecret     string        `env:"JWT_SECRET,required"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	SecureCookies bool          `env:"SECURE_COOKIES"`
	WorkerCount   int           `env:"WORKER_CONCURRENCY" envDefault:"5"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, cfg.ServiceName))
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	// Mongo connectivity is load-bearing for every flow; failing to reach
	// it at startup is fatal. The driver reconnects on its own afterwards.
	var mongoCfg mongodb.Config
	config.MustLoad(&mongoCfg)
	db, err := mongodb.ConnectDatabase(ctx, mongoCfg)
	if err != nil {
		return errors.Join(errors.New("mongo connect failed"), err)
	}

	var redisCfg redisconn.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redisconn.Connect(ctx, redisCfg)
	if err != nil {
		return errors.Join(errors.New("redis connect failed"), err)
	}
	defer redisClient.Close()

	tokens, err := jwt.New([]byte(cfg.JWTSecret))
	if err != nil {
		return err
	}

	var storageCfg storage.Config
	config.MustLoad(&storageCfg)
	uploader, err := storage.NewS3Uploader(ctx, storageCfg)
	if err != nil {
		return err
	}

	sender, err := emailSender(cfg, log)
	if err != nil {
		return err
	}

	authRepo := auth.NewRepository(db)
	if err := authRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	userRepo := user.NewRepository(db)
	userCache := user.NewCache(redisClient, log)

	taskRepo := queue.NewMongoRepository(db)
	if err := taskRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	enqueuer, err := queue.NewEnqueuer(taskRepo)
	if err != nil {
		return err
	}
	worker, err := queue.NewWorker(taskRepo,
		queue.WithConcurrency(cfg.WorkerCount),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}
	worker.RegisterHandlers(auth.JobHandlers(authRepo, userRepo, sender)...)

	authService, err := auth.NewService(
		authRepo, userRepo, userCache, uploader, enqueuer, tokens,
		auth.ServiceConfig{ClientURL: cfg.ClientURL, TokenTTL: cfg.JWTTTL},
		log,
	)
	if err != nil {
		return err
	}

	cookies := auth.SessionCookies{Secure: cfg.SecureCookies, MaxAge: cfg.JWTTTL}
	authHandler := auth.NewHandler(authService, cookies, log)

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(log))
	router.NotFound(auth.NotFoundHandler())
	router.Route("/api/v1", func(r chi.Router) {
		authHandler.Register(r, tokens)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerDone := make(chan error, 1)
	go func() { workerDone <- worker.Run(ctx) }()

	var srvCfg httpserver.Config
	config.MustLoad(&srvCfg)
	srv := httpserver.New(srvCfg, log)
	runErr := srv.Run(ctx, router)

	cancel()
	if err := <-workerDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Error("queue worker exited", logger.Error(err))
	}
	return runErr
}

// emailSender picks Postmark when a server token is configured and the
// log-only sender otherwise, which keeps local signup flows working without
// an outbound mail account.
func emailSender(cfg appConfig, log *slog.Logger) (email.EmailSender, error) {
	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	if emailCfg.PostmarkServerToken == "" {
		log.Info("no postmark token configured, using log-only email sender")
		return email.NewDevSender(log), nil
	}
	return email.NewPostmarkClient(emailCfg)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(logger.Component("http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
