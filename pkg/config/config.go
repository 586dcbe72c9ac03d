package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// DBDriver is postgres or sqlite.
	DBDriver        string
	PostgresConnStr string
	SQLitePath      string

	// BlogStore is postgres or mongo. Mongo settings are only read for mongo.
	BlogStore     string
	MongoURI      string
	MongoDatabase string

	// RedisAddr empty means the in-process cache is used.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	// FirebaseCredentialsPath empty disables firebase login.
	FirebaseCredentialsPath string
	SentryDSN               string

	// SMTPHost empty means mails are written to the log.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	OTPLength int
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "blogsphere.db"),

		BlogStore:     getEnv("BLOG_STORE", "postgres"),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "blogsphere"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "supersecretjwtkey"),
		JWTTTL:    getEnvDuration("JWT_TTL", 72*time.Hour),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		SentryDSN:               getEnv("SENTRY_DSN", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@blogsphere.local"),

		OTPLength: getEnvInt("OTP_LENGTH", 6),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
