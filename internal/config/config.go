package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr            string
	MongoURI            string
	MongoDBName         string
	MongoConnectTimeout time.Duration
	MongoMaxPoolSize    uint64
	MongoMinPoolSize    uint64
	RedisAddr           string
	RedisPassword       string
	CacheTTL            time.Duration
	CacheTTLJitter      time.Duration
	KafkaBrokers        []string
	EventsTopic         string

	CouponServiceURL     string
	ValidationServiceURL string
	PaymentServiceURL    string
	CatalogServiceURL    string

	RequestTimeout  time.Duration
	ClientTimeout   time.Duration
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
	ServiceName     string
}

func Load() Config {
	return Config{
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		MongoURI:            getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:         getenv("MONGO_DB", "storefront"),
		MongoConnectTimeout: getduration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		MongoMaxPoolSize:    getuint("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPoolSize:    getuint("MONGO_MIN_POOL_SIZE", 10),
		RedisAddr:           getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getenv("REDIS_PASSWORD", ""),
		CacheTTL:            getduration("CACHE_TTL", 15*time.Minute),
		CacheTTLJitter:      getduration("CACHE_TTL_JITTER", 5*time.Minute),
		KafkaBrokers:        splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
		EventsTopic:         getenv("EVENTS_TOPIC", "storefront.activity"),

		CouponServiceURL:     getenv("COUPON_SERVICE_URL", "http://localhost:8091"),
		ValidationServiceURL: getenv("VALIDATION_SERVICE_URL", "http://localhost:8092"),
		PaymentServiceURL:    getenv("PAYMENT_SERVICE_URL", "http://localhost:8093"),
		CatalogServiceURL:    getenv("CATALOG_SERVICE_URL", "http://localhost:8094"),

		RequestTimeout:  getduration("REQUEST_TIMEOUT", 30*time.Second),
		ClientTimeout:   getduration("CLIENT_TIMEOUT", 5*time.Second),
		ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", 10*time.Second),
		SessionTTL:      getduration("CHECKOUT_SESSION_TTL", 30*time.Minute),
		ServiceName:     getenv("SERVICE_NAME", "storefront-api"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getuint(k string, def uint64) uint64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
