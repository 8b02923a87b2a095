package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"mirae/internal/pkg/mq"
	"mirae/internal/service/checkout/domain"
)

// OrderConfirmationEvent 是发往邮件队列的消息结构，由 mailer-service 消费。
type OrderConfirmationEvent struct {
	OrderID      string `json:"orderId"`
	Email        string `json:"email"`
	CustomerName string `json:"customerName"`
	ProductName  string `json:"productName"`
	TotalAmount  int64  `json:"totalAmount"`
	BankTransfer bool   `json:"bankTransfer"`
}

// MailKafkaAdapter 实现了 port.Mailer。
// 邮件走消息队列解耦：生产端只保证消息入队，投递失败由调用方按尽力而为处理。
type MailKafkaAdapter struct {
	writer *kafka.Writer
}

func NewMailKafkaAdapter(writer *kafka.Writer) *MailKafkaAdapter {
	return &MailKafkaAdapter{writer: writer}
}

func (a *MailKafkaAdapter) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	event := OrderConfirmationEvent{
		OrderID:      order.ID,
		Email:        order.Email,
		CustomerName: order.CustomerName,
		ProductName:  order.ProductName,
		TotalAmount:  order.TotalAmount,
		BankTransfer: order.PaymentMethod == domain.PaymentBank,
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation event: %w", err)
	}

	// mq.ProduceMessage 会自动注入追踪上下文
	return mq.ProduceMessage(ctx, a.writer, []byte(order.ID), eventBytes)
}

// Close 关闭底层的 Kafka writer。
func (a *MailKafkaAdapter) Close() error {
	return a.writer.Close()
}
