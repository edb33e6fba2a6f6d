package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort    string
	AppBaseURL string

	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresHost    string
	PostgresPort    string
	PostgresDB      string
	PostgresUser    string
	PostgresPass    string
	PostgresSSLMode string

	SQLitePath string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	LogLevel  string
	LogFormat string

	// Mail provider; an empty key means sends are simulated.
	MailAPIKey string
	MailAPIURL string
	MailFrom   string

	NotifyHTTPTimeoutSecs int

	OutboxPollSecs       int
	OutboxBatchSize      int
	OutboxStaleAfterSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads optional .env files and then the process environment.
func Load() *Config {
	_ = godotenv.Load(".env", "../.env", "../../.env")

	return &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		AppBaseURL: getenv("APP_BASE_URL", "http://localhost:3000"),

		DBDriver: getenv("DB_DRIVER", DriverMySQL),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "contentops"),
		MySQLUser: getenv("MYSQL_USER", "contentops"),
		MySQLPass: getenv("MYSQL_PASS", "contentops"),

		PostgresHost:    getenv("POSTGRES_HOST", "postgres"),
		PostgresPort:    getenv("POSTGRES_PORT", "5432"),
		PostgresDB:      getenv("POSTGRES_DB", "contentops"),
		PostgresUser:    getenv("POSTGRES_USER", "contentops"),
		PostgresPass:    getenv("POSTGRES_PASS", "contentops"),
		PostgresSSLMode: getenv("POSTGRES_SSLMODE", "disable"),

		SQLitePath: getenv("SQLITE_PATH", "contentops.db"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		MailAPIKey: os.Getenv("MAIL_API_KEY"),
		MailAPIURL: getenv("MAIL_API_URL", "https://api.resend.com/emails"),
		MailFrom:   getenv("MAIL_FROM", "ContentOS <notify@contentos.app>"),

		NotifyHTTPTimeoutSecs: getenvInt("NOTIFY_HTTP_TIMEOUT_SECONDS", 10),

		OutboxPollSecs:       getenvInt("OUTBOX_POLL_INTERVAL_SECONDS", 15),
		OutboxBatchSize:      getenvInt("OUTBOX_BATCH_SIZE", 50),
		OutboxStaleAfterSecs: getenvInt("OUTBOX_STALE_AFTER_SECONDS", 300),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDB == "" || c.PostgresUser == "" {
			return errors.New("missing Postgres config (POSTGRES_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.PostgresPort); err != nil {
			return fmt.Errorf("invalid POSTGRES_PORT %q: %w", c.PostgresPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.NotifyHTTPTimeoutSecs <= 0 {
		return errors.New("NOTIFY_HTTP_TIMEOUT_SECONDS must be positive")
	}
	if c.OutboxPollSecs <= 0 || c.OutboxBatchSize <= 0 {
		return errors.New("outbox poll interval and batch size must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSLMode)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return c.PostgresDSN()
	case DriverSQLite:
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}

func (c *Config) NotifyHTTPTimeout() time.Duration {
	return time.Duration(c.NotifyHTTPTimeoutSecs) * time.Second
}

func (c *Config) OutboxPollInterval() time.Duration {
	return time.Duration(c.OutboxPollSecs) * time.Second
}

func (c *Config) OutboxStaleAfter() time.Duration {
	return time.Duration(c.OutboxStaleAfterSecs) * time.Second
}
