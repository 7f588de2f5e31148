package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	PgURL     string `env:"PG_URL,required"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// Provider secrets. Verification refuses to run without them.
	PaymobHMACSecret string `env:"PAYMOB_HMAC_SECRET,required"`
	KashierAPIKey    string `env:"KASHIER_API_KEY,required"`
	StripeSecretKey  string `env:"STRIPE_SECRET_KEY"`

	StripeClientTimeout time.Duration `env:"STRIPE_CLIENT_TIMEOUT" envDefault:"20s"`

	// Browser redirect targets for the GET callback variants.
	CheckoutSuccessURL string `env:"CHECKOUT_SUCCESS_URL" envDefault:"/checkout/success"`
	CheckoutErrorURL   string `env:"CHECKOUT_ERROR_URL" envDefault:"/checkout/error"`

	// Kafka payment-result notifications (optional, fire-and-forget).
	KafkaBrokers            []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaPaymentEventsTopic string   `env:"KAFKA_PAYMENT_EVENTS_TOPIC" envDefault:"payments.events"`
	KafkaNotifierGroup      string   `env:"KAFKA_NOTIFIER_CONSUMER_GROUP" envDefault:"storepay-notifier"`

	// OpenSearch webhook audit trail (optional, best-effort).
	OpensearchURLs          []string `env:"OPENSEARCH_URLS" envSeparator:","`
	OpensearchIndexWebhooks string   `env:"OPENSEARCH_INDEX_WEBHOOKS" envDefault:"payment-webhooks"`
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
