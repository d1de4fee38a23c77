package config

import (
	"os"
	"time"
)

const (
	// Requests
	OverdueThreshold = 5 * time.Minute

	// Complaints
	MaxComplaintTextLen = 5000

	// Auth
	TokenLifetime = 72 * time.Hour

	// External gateways
	GatewayTimeout = 30 * time.Second
)

// Config збирає налаштування середовища для сервера та CLI.
type Config struct {
	HTTPAddr string

	// Mirror store: "file" (default) або "postgres"
	StoreBackend string
	DataDir      string
	DBHost       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPort       string

	// Content store: "ipfs" (default) або "redis"
	ContentBackend string
	IPFSAddr       string
	RedisAddr      string

	// Ledger
	EthRPCURL        string
	ContractAddress  string
	LedgerPrivateKey string

	JWTSecret string
}

// Load reads the configuration from the environment. Missing values fall
// back to local-development defaults; secrets have no defaults.
func Load() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		StoreBackend:     getenv("STORE_BACKEND", "file"),
		DataDir:          getenv("DATA_DIR", "data"),
		DBHost:           getenv("DB_HOST", "localhost"),
		DBUser:           getenv("DB_USER", "user"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getenv("DB_NAME", "rtigodb"),
		DBPort:           getenv("DB_PORT", "5432"),
		ContentBackend:   getenv("CONTENT_BACKEND", "ipfs"),
		IPFSAddr:         getenv("IPFS_ADDR", "localhost:5001"),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		EthRPCURL:        getenv("ETH_RPC_URL", "http://localhost:8545"),
		ContractAddress:  os.Getenv("CONTRACT_ADDRESS"),
		LedgerPrivateKey: os.Getenv("LEDGER_PRIVATE_KEY"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
