package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ludora/storefront/internal/config"
	"github.com/ludora/storefront/internal/infra/httpclient"
	"github.com/ludora/storefront/internal/repo/marketapi"
	pgrepo "github.com/ludora/storefront/internal/repo/postgres"
	redrepo "github.com/ludora/storefront/internal/repo/redis"
	accesssvc "github.com/ludora/storefront/internal/services/access"
	accountsvc "github.com/ludora/storefront/internal/services/account"
	authsvc "github.com/ludora/storefront/internal/services/auth"
	cartsvc "github.com/ludora/storefront/internal/services/cart"
	feedbacksvc "github.com/ludora/storefront/internal/services/feedback"
	lessonplansvc "github.com/ludora/storefront/internal/services/lessonplans"
	paymentsvc "github.com/ludora/storefront/internal/services/payments"
	purchasesvc "github.com/ludora/storefront/internal/services/purchase"
	ratesvc "github.com/ludora/storefront/internal/services/rate"
	templatesvc "github.com/ludora/storefront/internal/services/templates"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, purchase audit disabled", zap.Error(err))
	} else {
		pool = p
	}

	market, err := marketapi.NewClient(
		cfg.Market.BaseURL,
		httpclient.New(cfg.Market.Timeout),
		httpclient.New(cfg.Market.UploadTimeout),
	)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("create market client: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	guardRepo := redrepo.NewGuardRepo(redisClient)
	cartRepo := redrepo.NewCartRepo(redisClient, cfg.Cart.TTL)
	notificationRepo := redrepo.NewNotificationRepo(redisClient, cfg.Feedback.MaxNotifications, cfg.Feedback.NotificationTTL)
	cacheRepo := redrepo.NewCacheRepo(redisClient)
	settlementRepo := redrepo.NewSettlementRepo(redisClient, 0)
	eventRepo := pgrepo.NewPurchaseEventRepo(pool)

	accessService := accesssvc.NewService(market)
	feedbackService := feedbacksvc.NewService(feedbacksvc.Dependencies{
		Logger:        log,
		Notifications: notificationRepo,
		Audit:         eventRepo,
	})
	cartService := cartsvc.NewService(cartRepo, market)
	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Purchase.AttemptsPerMinute,
		cfg.Purchase.AttemptsPer10Sec,
	)
	purchaseService := purchasesvc.NewService(purchasesvc.Dependencies{
		Logger:      log,
		Resolver:    accessService,
		Market:      market,
		Guard:       guardRepo,
		RateLimiter: rateLimiter,
		Cart:        cartService,
		Reporter:    feedbackService,
	}, purchasesvc.Config{
		GuardTTL:           cfg.Purchase.GuardTTL,
		CheckoutPath:       cfg.Purchase.CheckoutPath,
		ProductDetailsPath: cfg.Purchase.ProductDetailsPath,
	})
	paymentService := paymentsvc.NewService(paymentsvc.Dependencies{
		Logger:      log,
		Gateway:     market,
		Cart:        cartService,
		Reporter:    feedbackService,
		Settlements: settlementRepo,
	}, cfg.Env)
	templateService := templatesvc.NewService(log, market, cacheRepo, cfg.Templates.CacheTTL)
	accountService := accountsvc.NewService(market)
	lessonPlanService := lessonplansvc.NewService(market)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AccessService:     accessService,
		AccountService:    accountService,
		CartService:       cartService,
		FeedbackService:   feedbackService,
		LessonPlanService: lessonPlanService,
		PaymentService:    paymentService,
		PurchaseService:   purchaseService,
		TemplateService:   templateService,
		Verifier:          authsvc.NewVerifier(cfg.Auth.JWTSecret),
		AuditEnabled:      eventRepo.Enabled(),
		UploadTimeout:     cfg.Market.UploadTimeout,
		Logger:            log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.String("market", a.cfg.Market.BaseURL),
	)
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
