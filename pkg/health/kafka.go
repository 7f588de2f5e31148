package health

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaChecker dials the payment-event brokers. It is only registered when
// brokers are configured; event delivery is fire-and-forget, but a cluster
// that stays unreachable is worth surfacing in readiness.
type KafkaChecker struct {
	brokers []string
}

func NewKafkaChecker(brokers []string) *KafkaChecker {
	return &KafkaChecker{brokers: brokers}
}

func (c *KafkaChecker) Name() string {
	return "kafka"
}

// Check passes when any single broker answers.
func (c *KafkaChecker) Check(ctx context.Context) Result {
	for _, broker := range c.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			_ = conn.Close()
			return Result{Status: StatusUp}
		}
	}
	return Result{Status: StatusDown, Message: "all brokers unreachable"}
}
