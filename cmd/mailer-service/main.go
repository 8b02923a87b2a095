// cmd/mailer-service/main.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mirae/internal/pkg/bootstrap"
	"mirae/internal/pkg/logger"
	"mirae/internal/pkg/mq"
	"mirae/internal/pkg/tracing"
	"mirae/internal/service/checkout/infrastructure/adapter"
)

const (
	serviceName           = "mailer-service"
	confirmationMailTopic = "order-confirmations"
	consumerGroupID       = "mailer-group"
)

var tracer = otel.Tracer(serviceName)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: failed to load config: %v", err)
	}
	logger.Init(serviceName)

	tp, err := tracing.InitTracerProvider(serviceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		log.Fatalf("failed to initialize tracer provider: %v", err)
	}
	defer tp.Shutdown(context.Background())

	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, confirmationMailTopic, consumerGroupID)
	defer reader.Close()

	// 独立 goroutine 暴露健康检查和监控端口
	go func() {
		http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		http.Handle("/metrics", promhttp.Handler())
		log.Println("Starting health and metrics server on :8082")
		if err := http.ListenAndServe(":8082", nil); err != nil {
			log.Fatalf("Failed to start health/metrics server: %v", err)
		}
	}()

	log.Printf("Mailer Service started. Listening to topic '%s'...", confirmationMailTopic)
	for {
		msg, err := reader.ReadMessage(context.Background())
		if err != nil {
			log.Printf("ERROR: could not read message from '%s': %v. Retrying...", confirmationMailTopic, err)
			time.Sleep(5 * time.Second)
			continue
		}
		go processMailMessage(msg)
	}
}

func processMailMessage(msg kafka.Message) {
	// 接续生产端注入的追踪上下文
	ctx := mq.ExtractTraceContext(context.Background(), msg.Headers)
	ctx, span := tracer.Start(ctx, "mailer.SendOrderConfirmation", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	var event adapter.OrderConfirmationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal confirmation event")
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal confirmation event")
		return
	}

	span.SetAttributes(
		attribute.String("order.id", event.OrderID),
		attribute.String("mail.to", event.Email),
	)

	if err := sendMail(ctx, &event); err != nil {
		// 确认邮件是尽力而为：失败只记日志，由运营侧人工跟进
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).Str("order", event.OrderID).Msg("failed to send confirmation mail")
		return
	}

	logger.Ctx(ctx).Info().Str("order", event.OrderID).Str("to", event.Email).
		Msg("confirmation mail sent")
}

// sendMail 渲染并投递确认邮件。这里对接的是内部 SMTP 中继，
// 正文只包含订单号、商品名和金额，银行转账订单额外附上转账说明。
func sendMail(ctx context.Context, event *adapter.OrderConfirmationEvent) error {
	_, span := tracer.Start(ctx, "mailer.smtpRelay")
	defer span.End()

	subject := "Your order " + event.OrderID + " has been received"
	if event.BankTransfer {
		subject = "Bank transfer details for order " + event.OrderID
	}

	// 模拟 SMTP 投递耗时
	time.Sleep(50 * time.Millisecond)

	logger.Ctx(ctx).Info().
		Str("subject", subject).
		Str("product", event.ProductName).
		Str("total", strconv.FormatInt(event.TotalAmount, 10)).
		Msg("mail relayed")
	return nil
}
