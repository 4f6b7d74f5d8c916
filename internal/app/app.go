package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/techmart/backend/internal/auth"
	config "github.com/techmart/backend/internal/cfg"
	v1Http "github.com/techmart/backend/internal/delivery/v1/http"
	"github.com/techmart/backend/internal/infrastructure/kafka"
	minioInfra "github.com/techmart/backend/internal/infrastructure/minio"
	"github.com/techmart/backend/internal/infrastructure/paypal"
	s3Repo "github.com/techmart/backend/internal/repository/minio"
	"github.com/techmart/backend/internal/repository/pgdb"
	pgdbConv "github.com/techmart/backend/internal/repository/pgdb/converter"
	"github.com/techmart/backend/internal/repository/redis"
	redisConv "github.com/techmart/backend/internal/repository/redis/converter"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/clients"
	"github.com/techmart/backend/pkg/closer"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
	"github.com/techmart/backend/pkg/postgres"
)

// App связывает все слои приложения и управляет их жизненным циклом.
// Ресурсы освобождаются в порядке LIFO через closer.
type App struct {
	cfg    *config.Config
	logger logger.Logger

	httpSrv *v1Http.Server
	closer  *closer.Closer

	cancelBackground context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	appCloser := closer.NewCloser(2 * time.Second)

	// Фоновые задачи (outbox worker, очистка MinIO) живут до начала shutdown.
	backgroundCtx, cancelBackground := context.WithCancel(context.Background())

	app := &App{
		cfg:              cfg,
		logger:           log,
		closer:           appCloser,
		cancelBackground: cancelBackground,
	}

	db, err := initPGDB(log, cfg)
	if err != nil {
		cancelBackground()
		return nil, err
	}
	appCloser.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverter())
	userRepo := pgdb.NewUserRepo(db.Pool, pgdbConv.NewUserConverter())
	orderRepo := pgdb.NewOrderRepo(db.Pool, pgdbConv.NewOrderConverter())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverter())

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		cancelBackground()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	appCloser.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewProductInfoConverter(), cfg.Redis, log)

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		cancelBackground()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		cancelBackground()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, backgroundCtx)
	appCloser.Add(imagesInfra.WaitForCleanup)

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		cancelBackground()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		cancelBackground()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	appCloser.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	outboxWorker := kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)
	outboxWorker.Start(backgroundCtx)
	appCloser.Add(func(ctx context.Context) error {
		outboxWorker.Stop()
		return nil
	})

	paypalClient := paypal.NewClient(cfg.PayPal, log)
	tokens := auth.NewTokenManager(cfg.Auth)

	catalogUC := usecase.NewCatalogUC(productRepo, cacheRepo, imagesInfra, cfg.Catalog, log)
	userUC := usecase.NewUserUC(userRepo, tokens, log)
	orderUC := usecase.NewOrderUC(orderRepo, productRepo, outboxRepo, db.Pool, paypalClient, cacheRepo, cfg.PayPal, log)
	reportUC := usecase.NewReportUC(orderRepo, log)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(&v1Http.Deps{
		CatalogUC:   catalogUC,
		UserUC:      userUC,
		OrderUC:     orderUC,
		ReportUC:    reportUC,
		ImagesInfra: imagesInfra,
		Tokens:      tokens,
		MinioCfg:    cfg.Minio,
		PayPalCfg:   cfg.PayPal,
	})

	app.httpSrv = v1Http.NewServer(r, cfg.Http)
	appCloser.Add(app.httpSrv.Stop)

	return app, nil
}

// Run запускает HTTP-сервер и блокируется до сигнала завершения или
// фатальной ошибки сервера.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.cancelBackground()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("shutdown finished with errors: %v", err)
	} else {
		a.logger.Infof("Application shutdown complete")
	}

	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
