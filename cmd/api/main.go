package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	gql "github.com/spec-kit/issue-tracker/internal/api/graphql"
	httptransport "github.com/spec-kit/issue-tracker/internal/api/http"
	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/persistence"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/repository/memory"
	"github.com/spec-kit/issue-tracker/internal/service"
	"github.com/spec-kit/issue-tracker/internal/worker"
)

type repositories struct {
	users    repository.UserRepository
	tickets  repository.TicketRepository
	comments repository.CommentRepository
	checks   []handlers.HealthCheck
}

func main() {
	var (
		envFiles []string
		migrate  string
	)
	flags := pflag.NewFlagSet("issue-tracker", pflag.ExitOnError)
	flags.StringArrayVar(&envFiles, "env-file", nil, "load environment variables from `file` (repeatable)")
	flags.StringVar(&migrate, "migrate", "", "override POSTGRES_RUN_MIGRATIONS (true|false)")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if flags.Changed("migrate") {
		switch migrate {
		case "true", "1":
			cfg.Postgres.RunMigrations = true
		case "false", "0":
			cfg.Postgres.RunMigrations = false
		default:
			log.Fatalf("invalid --migrate value %q", migrate)
		}
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	if redis != nil {
		repos.checks = append(repos.checks, handlers.HealthCheck{Name: "redis", Pinger: redis})
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	var streamPublisher *events.RedisStreamPublisher
	if cfg.Events.RedisStream != "" {
		streamPublisher = events.NewRedisStreamPublisher(redis.Cmdable(), cfg.Events.RedisStream, cfg.Events.RedisStreamMaxLen)
	}
	worker.StartNotificationWorker(dispatcher, notificationService, streamPublisher, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: repos.users})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repos.tickets,
		UserRepo:   repos.users,
		Dispatcher: dispatcher,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: repos.comments,
		TicketRepo:  repos.tickets,
		Dispatcher:  dispatcher,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	schema, err := gql.NewSchema(ticketService, commentService)
	if err != nil {
		logger.Fatal("failed to build graphql schema", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		BasePath:       cfg.App.BasePath,
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, logger, metrics, repos.checks...),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		GraphQL:        gql.Handler(schema),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("base_path", cfg.App.BasePath),
			zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories, func()) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return repositories{
			users:    store.Users(),
			tickets:  store.Tickets(),
			comments: store.Comments(),
			checks:   []handlers.HealthCheck{{Name: "store", Pinger: store}},
		}, func() {}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			pg.Close()
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pool := pg.PoolHandle()
	return repositories{
		users:    repository.NewUserRepository(pool),
		tickets:  repository.NewTicketRepository(pool),
		comments: repository.NewCommentRepository(pool),
		checks:   []handlers.HealthCheck{{Name: "postgres", Pinger: pg}},
	}, pg.Close
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
