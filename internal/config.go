package internal

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type Config struct {
	KafkaBrokers    string        `env:"KAFKA_BROKERS,default=localhost:9092" validate:"required"`
	KafkaGroupID    string        `env:"KAFKA_GROUP_ID,default=chat-aggregator" validate:"required"`
	ChatTopic       string        `env:"CHAT_TOPIC,default=chat" validate:"required"`
	IdentityTopic   string        `env:"IDENTITY_TOPIC,default=identity" validate:"required"`
	ConsumerWorkers int           `env:"CONSUMER_WORKERS,default=1" validate:"min=1"`
	FailurePolicy   string        `env:"FAILURE_POLICY,default=redeliver" validate:"oneof=redeliver skip"`
	MaxAttempts     int           `env:"MAX_ATTEMPTS,default=1" validate:"min=1"`
	RetryBackoff    time.Duration `env:"RETRY_BACKOFF,default=500ms"`
	GatewayTimeout  time.Duration `env:"GATEWAY_TIMEOUT,default=0s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=2s"`
	// HEARTBEAT_INTERVAL of 0 disables the heartbeat log
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`

	StoreDriver    string `env:"STORE_DRIVER,default=badger" validate:"oneof=badger postgres"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`
	PostgresDSN    string `env:"POSTGRES_DSN" validate:"required_if=StoreDriver postgres"`

	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080" validate:"min=1,max=65535"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64" validate:"min=1"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=100ms"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	JWTSecret            string        `env:"JWT_SECRET"`

	LogLevel string `env:"LOG_LEVEL,default=INFO"`
}

func (c Config) Validate() error {
	return validate.Struct(c)
}

// Brokers splits KAFKA_BROKERS on commas.
func (c Config) Brokers() []string {
	return lo.Compact(lo.Map(strings.Split(c.KafkaBrokers, ","), func(b string, _ int) string {
		return strings.TrimSpace(b)
	}))
}
