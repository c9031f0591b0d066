package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Broker     BrokerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type JWTConfig struct {
	// Secret signs and verifies session tokens. Required; there is no default.
	Secret string
	TTL    time.Duration
}

// StorageConfig selects the object-storage backend for rental pictures.
// Backend is "minio" or "gcs".
type StorageConfig struct {
	Backend string
	// PublicBaseURL is the externally reachable prefix for stored objects,
	// e.g. "https://cdn.example.com/rentals". Picture URLs are built as
	// PublicBaseURL + "/" + key.
	PublicBaseURL string
	Minio         MinioConfig
	GCS           GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// BrokerConfig selects the message broker for rental-message events.
// Backend is "rabbitmq", "pubsub", or "none".
type BrokerConfig struct {
	Backend  string
	Channel  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "rentalhub"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "rentalhub_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "minio"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:9000/rentals"),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "rentals"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		Broker: BrokerConfig{
			Backend: getEnv("BROKER_BACKEND", "none"),
			Channel: getEnv("BROKER_CHANNEL", "rental-messages"),
			RabbitMQ: RabbitMQConfig{
				URL:             getEnv("RABBITMQ_URL", ""),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 1),
			},
			PubSub: PubSubConfig{
				ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "notifier"),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "true" || valueStr == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
