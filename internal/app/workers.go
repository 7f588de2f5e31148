package app

import (
	"context"

	"storepay/config"
	"storepay/internal/controller/message"
	"storepay/internal/external/kafka"
	"storepay/internal/messaging"
	"storepay/pkg/logger"
)

// StartWorkers starts the Kafka consumer for payment.recorded events. It
// runs in a separate goroutine and stops when ctx is cancelled.
func StartWorkers(ctx context.Context, l *logger.Logger, cfg config.Config) {
	paymentController := message.NewPaymentMessageController(l)
	paymentConsumer := kafka.NewConsumer(
		l,
		cfg.KafkaBrokers,
		cfg.KafkaPaymentEventsTopic,
		cfg.KafkaNotifierGroup,
	)
	paymentRunner := messaging.NewRunner(l, []messaging.Worker{paymentConsumer}, paymentController.HandleMessage)

	go func() {
		l.Info("Starting payment event consumer: topic=%s group=%s",
			cfg.KafkaPaymentEventsTopic, cfg.KafkaNotifierGroup)
		if err := paymentRunner.Start(ctx); err != nil {
			l.Error("Payment event runner failed: error=%v", err)
		}
	}()
}
