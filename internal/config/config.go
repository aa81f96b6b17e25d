package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// devJWTSecret signs tokens when JWT_SECRET is unset outside production.
const devJWTSecret = "allclear-dev-secret-do-not-use-in-production"

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env             string        // APP_ENV, "production" enables the strict checks
	Port            string        // APP_PORT (or PORT), default 5001
	StoreDriver     string        // STORE_DRIVER: mongo, mysql or memory
	MongoURI        string        // MONGODB_URI
	MongoDatabase   string        // MONGODB_DATABASE, default allclear
	DBUser          string        // DB_USER
	DBPass          string        // DB_PASS (empty allowed)
	DBHost          string        // DB_HOST
	DBPort          string        // DB_PORT
	DBName          string        // DB_NAME
	JWTSecret       string        // JWT_SECRET
	JWTSecretIsDev  bool          // true when the development fallback key is in use
	JWTTTL          time.Duration // JWT_TTL, default 24h
	BcryptCost      int           // BCRYPT_COST, default 10
	CORSOrigins     []string      // CORS_ORIGINS, comma separated, default *
	LogLevel        string        // LOG_LEVEL
	LogFormat       string        // LOG_FORMAT: json or console
	SentryDSN       string        // SENTRY_DSN, reporting disabled when empty
	ShutdownTimeout time.Duration // SHUTDOWN_TIMEOUT, default 10s
	Cache           CacheConfig
	Redis           RedisConfig
}

// Production reports whether APP_ENV names a production deployment.
func (c Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "production", "prod":
		return true
	}
	return false
}

// LoadDotEnv reads .env files into the process environment.  Missing files
// are ignored; variables already set win over file values.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Load reads configuration values from environment variables.  Every
// problem found is reported in the returned error.
func Load() (Config, error) {
	var errs []error
	c := Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("APP_PORT", getenv("PORT", "5001")),
		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getenv("MONGODB_DATABASE", "allclear"),
		DBUser:        os.Getenv("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        getenv("DB_PORT", "3306"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        envDur("JWT_TTL", 24*time.Hour, &errs),
		BcryptCost:    envInt("BCRYPT_COST", 10, &errs),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "*")),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "json"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Cache:         LoadCacheConfig(),
		Redis:         LoadRedisConfig(),
	}
	c.ShutdownTimeout = envDur("SHUTDOWN_TIMEOUT", 10*time.Second, &errs)

	if c.JWTSecret == "" {
		if c.Production() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			c.JWTSecret, c.JWTSecretIsDev = devJWTSecret, true
		}
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL))
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo store"))
		}
	case DriverMySQL:
		for key, v := range map[string]string{"DB_USER": c.DBUser, "DB_HOST": c.DBHost, "DB_NAME": c.DBName} {
			if v == "" {
				errs = append(errs, fmt.Errorf("%s is required for the mysql store", key))
			}
		}
	case DriverMemory:
		if c.Production() {
			errs = append(errs, errors.New("the memory store cannot be used in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	return c, errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	s := getenv(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid int for %s: %q", key, s))
		return def
	}
	return n
}

func envDur(key string, def time.Duration, errs *[]error) time.Duration {
	s := getenv(key, "")
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid duration for %s: %q", key, s))
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(getenv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
