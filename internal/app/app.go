package app

import (
	"context"
	"embed"
	"fmt"

	"storepay/config"
	controllerhttp "storepay/internal/controller/http"
	"storepay/internal/controller/http/handlers"
	"storepay/internal/domain/order"
	"storepay/internal/domain/payment"
	"storepay/internal/external/kafka"
	"storepay/internal/external/opensearch"
	"storepay/internal/messaging"
	"storepay/internal/provider/kashier"
	"storepay/internal/provider/paymob"
	"storepay/internal/provider/stripe"
	order_repo "storepay/internal/repo/order"
	payment_repo "storepay/internal/repo/payment"
	"storepay/internal/webhook"
	"storepay/pkg/health"
	"storepay/pkg/logger"
	"storepay/pkg/metrics"
	"storepay/pkg/postgres"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed migrations/*.sql
var MIGRATION_FS embed.FS

func Run(cfg config.Config) {
	l := logger.New(cfg.LogLevel)
	ctx := context.Background()

	engine := NewGinEngine(l)

	pool, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pool.Close()

	if err := ApplyMigrations(cfg.PgURL, MIGRATION_FS); err != nil {
		l.Fatal(fmt.Errorf("app - Run - ApplyMigrations: %w", err))
	}

	paymentRepo := payment_repo.NewPgPaymentRepo(pool)
	orderRepo := order_repo.NewPgOrderRepo(pool)

	reconcileService := payment.NewReconcileService(paymentRepo)
	orderService := order.NewOrderService(orderRepo)

	var publisher messaging.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(l, cfg.KafkaBrokers, cfg.KafkaPaymentEventsTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		StartWorkers(ctx, l, cfg)
	}

	var auditSink payment.AuditSink
	if len(cfg.OpensearchURLs) > 0 {
		sink, err := opensearch.NewAuditSink(ctx, cfg.OpensearchURLs, cfg.OpensearchIndexWebhooks)
		if err != nil {
			l.Error("Audit sink unavailable, continuing without: error=%v", err)
		} else {
			auditSink = sink
		}
	}

	processor := webhook.NewSyncProcessor(reconcileService, publisher, l)

	var stripeAdapter *stripe.Adapter
	if cfg.StripeSecretKey != "" {
		sessions, err := stripe.NewAPISessionClient(cfg.StripeSecretKey, cfg.StripeClientTimeout)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - stripe.NewAPISessionClient: %w", err))
		}
		stripeAdapter = stripe.NewAdapter(sessions)
	}

	paymobHandler := handlers.NewWebhookHandler(
		paymob.New(cfg.PaymobHMACSecret), processor, auditSink, l,
		cfg.CheckoutSuccessURL, cfg.CheckoutErrorURL,
	)
	kashierHandler := handlers.NewWebhookHandler(
		kashier.New(cfg.KashierAPIKey), processor, auditSink, l,
		cfg.CheckoutSuccessURL, cfg.CheckoutErrorURL,
	)
	checkoutHandler := handlers.NewCheckoutHandler(stripeAdapter, reconcileService, processor, l)
	orderHandler := handlers.NewOrderHandler(orderService, reconcileService)

	router := controllerhttp.NewRouter(paymobHandler, kashierHandler, checkoutHandler, orderHandler)
	router.SetUp(engine)

	setUpOperational(engine, pool, cfg)

	if err := engine.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		l.Fatal(fmt.Errorf("app - Run - engine.Run: %w", err))
	}
}

func setUpOperational(engine *gin.Engine, pool *postgres.Postgres, cfg config.Config) {
	checkers := []health.Checker{health.NewPostgresChecker(pool.Pool)}
	if len(cfg.KafkaBrokers) > 0 {
		checkers = append(checkers, health.NewKafkaChecker(cfg.KafkaBrokers))
	}
	registry := health.NewRegistry(checkers...)

	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(registry, health.DefaultTimeout))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}
