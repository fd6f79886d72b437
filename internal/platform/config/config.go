package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	BaseTokenURI    string
	FeeRate         int64
	FeeHolder       string
	AdminAccount    string
	OperatorAccount string
	EngineAccount   string
	CustodyAccount  string

	EnableOutboxRelay bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "mystic"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	engine := os.Getenv("ENGINE_ACCOUNT")
	if engine == "" {
		engine = "marketplace-engine"
	}

	custody := os.Getenv("CUSTODY_ACCOUNT")
	if custody == "" {
		custody = "payment-custody"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		BaseTokenURI:    os.Getenv("BASE_TOKEN_URI"),
		FeeRate:         envInt64("FEE_RATE", 30000),
		FeeHolder:       os.Getenv("FEE_HOLDER"),
		AdminAccount:    os.Getenv("ADMIN_ACCOUNT"),
		OperatorAccount: os.Getenv("OPERATOR_ACCOUNT"),
		EngineAccount:   engine,
		CustodyAccount:  custody,

		EnableOutboxRelay: envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envInt64(name string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
