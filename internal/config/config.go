package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr      string
	BaseURL         string
	CORSOrigins     string // Comma-separated allowed origins
	TrustProxy      bool   // Honor X-Forwarded-For / X-Real-IP for client addresses
	GlobalRateLimit int    // Requests per minute per client address, 0 disables

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // Optional CA for mTLS client verification

	// Database
	DatabaseURL string

	// Redis backs the rate limit counters when set
	RedisURL string

	// Identity provider (Privy)
	PrivyAppID              string
	IdentityIssuer          string // Substring accepted in the iss claim
	IdentityJWKSURL         string
	IdentityVerificationKey string // PEM public key, takes precedence over JWKS

	// Token gate
	NFTContractAddress string
	EthereumRPCURL     string
	RPCTimeout         time.Duration

	// Admin
	AdminSecretCode string

	// Blob storage (S3 compatible)
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3UseSSL          bool
	S3PublicURL       string

	// Taxonomy
	TaxonomyFile   string
	SeedCategories bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	appID := getEnv("PRIVY_APP_ID", "")
	jwks := getEnv("IDENTITY_JWKS_URL", "")
	if jwks == "" && appID != "" {
		jwks = "https://auth.privy.io/api/v1/apps/" + appID + "/jwks.json"
	}

	return &Config{
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", ""),
		ServerAddr:              getEnv("SERVER_ADDR", ":3000"),
		BaseURL:                 getEnv("BASE_URL", "http://localhost:3000"),
		CORSOrigins:             getEnv("CORS_ORIGINS", ""),
		TrustProxy:              getEnv("TRUST_PROXY", "") != "",
		GlobalRateLimit:         getEnvInt("GLOBAL_RATE_LIMIT", 100),
		TLSEnabled:              getEnv("TLS_ENABLED", "false") == "true",
		TLSCertFile:             getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:              getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:               getEnv("TLS_CA_FILE", ""),
		DatabaseURL:             getEnv("DATABASE_URL", "postgres://localhost:5432/marketplace?sslmode=disable"),
		RedisURL:                getEnv("REDIS_URL", ""),
		PrivyAppID:              appID,
		IdentityIssuer:          getEnv("IDENTITY_ISSUER", "privy.io"),
		IdentityJWKSURL:         jwks,
		IdentityVerificationKey: strings.ReplaceAll(getEnv("IDENTITY_VERIFICATION_KEY", ""), `\n`, "\n"),
		NFTContractAddress:      getEnv("NFT_CONTRACT_ADDRESS", ""),
		EthereumRPCURL:          getEnv("ETHEREUM_RPC_URL", "https://eth.llamarpc.com"),
		RPCTimeout:              getEnvDuration("RPC_TIMEOUT", 10*time.Second),
		AdminSecretCode:         getEnv("ADMIN_SECRET_CODE", ""),
		S3Endpoint:              getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:           getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:       getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:                getEnv("S3_BUCKET", ""),
		S3UseSSL:                getEnv("S3_USE_SSL", "true") != "false",
		S3PublicURL:             getEnv("S3_PUBLIC_URL", ""),
		TaxonomyFile:            getEnv("TAXONOMY_FILE", "taxonomy.yaml"),
		SeedCategories:          getEnv("SEED_CATEGORIES", "true") != "false",
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsProduction returns true for the production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// IsStorageEnabled returns true if blob storage is configured.
func (c *Config) IsStorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != ""
}

// IsIdentityConfigured returns true if bearer tokens can be verified.
func (c *Config) IsIdentityConfigured() bool {
	return c.PrivyAppID != "" && (c.IdentityVerificationKey != "" || c.IdentityJWKSURL != "")
}
