package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode is the deployment mode. It decides the fatal-vs-warn behaviour for
// missing key material: production refuses to start without it, development
// generates ephemeral substitutes loudly.
type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Stale-pointer sweep interval (default: 1h)

	DatabaseDriver string // Store driver: sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./authcore.db)
	DatabaseURL    string // Postgres DSN (required when driver is postgres)

	MFAEncryptionKey string // Hex master key for the secret vault; required in production
	MFAIssuer        string // Issuer name shown in authenticator apps (default: Crewplane)

	SandboxTenantID string // Reserved staff sandbox tenant id (optional)

	AuthIssuer        string   // Expected iss claim on session tokens (optional)
	AuthAudience      []string // Expected aud values on session tokens (optional)
	AuthPublicKeyFile string   // PEM file with the identity provider's public key
	AuthPublicKeyPEM  string   // Inline PEM alternative, mainly for containerized tests
	DevKeysDir        string   // Where dev mode auto-provisions a keypair (default: ./devkeys)

	StaffVerifier     string   // Staff capability backend: static or http (default: static)
	PlatformStaff     []string // Static verifier: allowlisted staff uids
	StaffServiceURL   string   // HTTP verifier: staff directory base URL
	StaffServiceToken string   // HTTP verifier: bearer credential
}

func LoadConfig() Config {
	cfg := Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "authcore.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		MFAEncryptionKey: os.Getenv("MFA_ENCRYPTION_KEY"),
		MFAIssuer:        getEnvOrDefault("MFA_ISSUER", "Crewplane"),

		SandboxTenantID: os.Getenv("SANDBOX_TENANT_ID"),

		AuthIssuer:        getEnvOrDefault("AUTH_ISSUER", "crewplane-identity"),
		AuthAudience:      splitEnvList(os.Getenv("AUTH_AUDIENCE")),
		AuthPublicKeyFile: os.Getenv("AUTH_JWT_PUBLIC_KEY_FILE"),
		AuthPublicKeyPEM:  os.Getenv("AUTH_JWT_PUBLIC_KEY"),
		DevKeysDir:        getEnvOrDefault("DEV_KEYS_DIR", "devkeys"),

		StaffVerifier:     getEnvOrDefault("STAFF_VERIFIER", "static"),
		PlatformStaff:     splitEnvList(os.Getenv("PLATFORM_STAFF")),
		StaffServiceURL:   os.Getenv("STAFF_SERVICE_URL"),
		StaffServiceToken: os.Getenv("STAFF_SERVICE_TOKEN"),
	}

	return cfg
}

// Mode maps the environment name to a deployment mode. Anything that is not
// explicitly production counts as development.
func (c Config) Mode() Mode {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return ModeProduction
	default:
		return ModeDevelopment
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitEnvList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
