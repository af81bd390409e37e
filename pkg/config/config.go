package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string
	FrontendURL string
	PublicURL   string
	CORSOrigins []string

	JWTSecret        string
	JWTExpiry        time.Duration
	OAuthTokenExpiry time.Duration
	CookieSecure     bool

	StoreDriver             string
	FirebaseProject         string
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string
	MongoURI                string
	MongoDatabase           string
	RedisURL                string
	StorageBucket           string
	StorageFolder           string
	MaxUploadSize           int64
	ImageMaxWidth           int
	MaxPhotosPerReport      int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	OverdueScanInterval time.Duration
	OverdueScanBatch    int
	OTPTTL              time.Duration
	NotifierBuffer      int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "5000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		PublicURL:   getEnv("PUBLIC_URL", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:        getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		OAuthTokenExpiry: getEnvAsDuration("OAUTH_TOKEN_EXPIRY", 7*24*time.Hour),
		CookieSecure:     getEnvAsBool("COOKIE_SECURE", false),

		StoreDriver:             getEnv("STORE_DRIVER", "firestore"),
		FirebaseProject:         getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:           getEnv("MONGO_DATABASE", "ecotrack"),
		RedisURL:                getEnv("REDIS_URL", ""),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
		StorageFolder:           getEnv("STORAGE_FOLDER", "ecotrack"),
		MaxUploadSize:           getEnvAsInt64("MAX_UPLOAD_SIZE", 5*1024*1024),
		ImageMaxWidth:           int(getEnvAsInt64("IMAGE_MAX_WIDTH", 1920)),
		MaxPhotosPerReport:      int(getEnvAsInt64("MAX_PHOTOS_PER_REPORT", 5)),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("EMAIL_USER", ""),
		SMTPPassword: getEnv("EMAIL_PASS", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/auth/google/callback"),

		OverdueScanInterval: getEnvAsDuration("OVERDUE_SCAN_INTERVAL", time.Hour),
		OverdueScanBatch:    int(getEnvAsInt64("OVERDUE_SCAN_BATCH", 200)),
		OTPTTL:              getEnvAsDuration("OTP_TTL", 10*time.Minute),
		NotifierBuffer:      int(getEnvAsInt64("NOTIFIER_BUFFER", 256)),
	}

	if config.PublicURL == "" {
		config.PublicURL = "http://localhost:" + config.ServerPort
	}
	if config.MailFrom == "" {
		config.MailFrom = config.SMTPUsername
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("90m") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
