package env

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds environment variables
type Config struct {
	// MongoDB source
	MongoURI string
	MongoDB  string

	// SQL Server warehouse
	SQLServerHost     string
	SQLServerPort     string
	SQLServerUser     string
	SQLServerPassword string
	SQLServerDB       string

	// PostgreSQL warehouse
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string

	// WarehouseDSN overrides the DSN assembled from the fields above.
	WarehouseDSN string

	// Observability
	PushgatewayURL string
	LogLevel       string
	LogFormat      string
}

// Load reads environment variables, first applying workDir/.env when it
// exists. Variables already set in the process win over the file.
func Load(workDir string) (*Config, error) {
	envFile := filepath.Join(workDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &Config{
		// MongoDB
		MongoURI: getEnvOrDefault("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnvOrDefault("MONGO_DB", ""),

		// SQL Server
		SQLServerHost:     getEnvOrDefault("SQLSERVER_HOST", "127.0.0.1"),
		SQLServerPort:     getEnvOrDefault("SQLSERVER_PORT", "1433"),
		SQLServerUser:     getEnvOrDefault("SQLSERVER_USER", "sa"),
		SQLServerPassword: getEnvOrDefault("SQLSERVER_PASSWORD", ""),
		SQLServerDB:       getEnvOrDefault("SQLSERVER_DB", "dwh"),

		// PostgreSQL
		PostgresUser:     getEnvOrDefault("POSTGRES_USER", "etl_user"),
		PostgresPassword: getEnvOrDefault("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnvOrDefault("POSTGRES_DB", "dwh"),
		PostgresHost:     getEnvOrDefault("POSTGRES_HOST", "127.0.0.1"),
		PostgresPort:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		WarehouseDSN: getEnvOrDefault("WAREHOUSE_DSN", ""),

		PushgatewayURL: getEnvOrDefault("PUSHGATEWAY_URL", ""),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func (c *Config) SQLServerDSN() string {
	return fmt.Sprintf("server=%s;port=%s;user id=%s;password=%s;database=%s;",
		c.SQLServerHost, c.SQLServerPort, c.SQLServerUser, c.SQLServerPassword, c.SQLServerDB)
}

func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     c.PostgresHost + ":" + c.PostgresPort,
		Path:     "/" + c.PostgresDB,
		RawQuery: url.Values{"sslmode": {c.PostgresSSLMode}}.Encode(),
	}
	return u.String()
}

// DSNFor returns the warehouse connection string for a sink type.
func (c *Config) DSNFor(sinkType string) (string, error) {
	if c.WarehouseDSN != "" {
		return c.WarehouseDSN, nil
	}
	switch sinkType {
	case "sqlserver", "mssql":
		return c.SQLServerDSN(), nil
	case "postgres", "postgresql":
		return c.PostgresDSN(), nil
	default:
		return "", fmt.Errorf("no connection settings for sink type %q", sinkType)
	}
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
