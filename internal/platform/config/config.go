package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean and deployments stay twelve-factor.
type Server struct {
	Addr            string
	PostgresDSN     string
	Redis           RedisConfig
	Kafka           KafkaConfig
	AdminSigningKey string
	// OwnershipSnapshot is the path to the holder-gate ownership snapshot.
	// When unset, holder-gate policies reject every purchase.
	OwnershipSnapshot string
	ShutdownTimeout   time.Duration
}

// RedisConfig configures the optional Redis-backed quota store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional Kafka event stream.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("MINTGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	signingKey := os.Getenv("MINTGATE_ADMIN_SIGNING_KEY")
	if signingKey == "" {
		// Development default - must be overridden in production.
		signingKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("MINTGATE_KAFKA_TOPIC")
	if topic == "" {
		topic = "mintgate.events"
	}

	var brokers []string
	if v := os.Getenv("MINTGATE_KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	return Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("MINTGATE_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("MINTGATE_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
		AdminSigningKey:   signingKey,
		OwnershipSnapshot: os.Getenv("MINTGATE_OWNERSHIP_FILE"),
		ShutdownTimeout:   10 * time.Second,
	}
}
