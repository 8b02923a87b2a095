// cmd/checkout-service/main.go
package main

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"

	"mirae/internal/pkg/bootstrap"
	"mirae/internal/pkg/httpclient"
	"mirae/internal/pkg/mq"
	"mirae/internal/pkg/redis"
	"mirae/internal/service/checkout/application"
	"mirae/internal/service/checkout/infrastructure"
	"mirae/internal/service/checkout/infrastructure/adapter"
	"mirae/internal/service/checkout/interfaces"
)

const (
	serviceName           = "checkout-service"
	confirmationMailTopic = "order-confirmations"
)

// main 函数是应用的"组装根" (Composition Root)：
// 创建并组装所有依赖项，然后交给 bootstrap 启动。
func main() {
	var onShutdown func(ctx context.Context)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8080,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Config
			tracer := otel.Tracer(serviceName)

			// 1. 基础设施客户端
			db, err := infrastructure.NewDB(cfg.Infra.Mysql.DSN)
			if err != nil {
				log.Fatalf("failed to initialize mysql: %v", err)
			}

			redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
			if err != nil {
				log.Fatalf("failed to initialize redis client: %v", err)
			}

			mailWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, confirmationMailTopic)
			httpClient := httpclient.NewClient(tracer)

			// 2. 出站适配器
			catalogStore := adapter.NewCatalogGormAdapter(db)
			orderRepo := infrastructure.NewGormOrderRepository(db)
			paymentGateway := adapter.NewPaymentHTTPAdapter(httpClient, cfg.App.PaymentGatewayURL)
			mailer := adapter.NewMailKafkaAdapter(mailWriter)
			reservations := adapter.NewReservationRedisAdapter(redisClient)
			telemetry := application.NewTelemetrySidecar(
				adapter.NewTelemetryHTTPAdapter(httpClient, cfg.App.TelemetryWebhookURL),
				time.Duration(cfg.App.TelemetryTimeoutSeconds)*time.Second,
			)

			// 3. 业务服务与接口层
			checkoutService := application.NewCheckoutService(
				catalogStore,
				orderRepo,
				paymentGateway,
				mailer,
				reservations,
				telemetry,
				tracer,
				cfg.App.CountdownSeconds,
				cfg.App.FeatureFlags.EnablePromotion,
			)

			interfaces.NewCheckoutHandler(checkoutService).RegisterRoutes(appCtx.Mux)
			interfaces.NewCountdownWSHandler(checkoutService).RegisterRoutes(appCtx.Mux)

			onShutdown = func(ctx context.Context) {
				if err := mailer.Close(); err != nil {
					log.Printf("Error closing mail producer: %v", err)
				}
				if err := redisClient.Close(); err != nil {
					log.Printf("Error closing redis client: %v", err)
				}
			}
		},
		OnShutdown: func(ctx context.Context) {
			if onShutdown != nil {
				onShutdown(ctx)
			}
		},
	})
}
