package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr string

	// Tezos data sources
	TzktBaseURL     string // TzKT indexer REST API base, e.g. https://api.tzkt.io
	ObjktGraphQLURL string // Objkt marketplace GraphQL endpoint
	TokenPageLimit  int    // page size for token balance pagination, max 1000

	// IPFS gateway resolution. Gateways are tried in order on audio load failure.
	IPFSGateways    []string
	GatewayListFile string // optional file with one gateway URL per line, hot-reloaded

	// MySQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO audio object cache
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Wallet sessions
	JWTSecret string

	// Testnet faucet proxy
	FaucetUpstreamURL string
	FaucetNetwork     string
	FaucetMaxClaims   int    // claims allowed per address
	FaucetInviteHash  string // bcrypt hash of the invite code, empty disables the check

	// Logging
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// defaultGateways is the fallback gateway order when none are configured.
// The first entry is the primary audio gateway.
var defaultGateways = []string{
	"https://ipfs.io/ipfs/",
	"https://gateway.pinata.cloud/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://dweb.link/ipfs/",
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	gateways := defaultGateways
	if raw := os.Getenv("IPFS_GATEWAYS"); raw != "" {
		gateways = splitGateways(raw)
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		TzktBaseURL:     getEnv("TZKT_BASE_URL", "https://api.tzkt.io"),
		ObjktGraphQLURL: getEnv("OBJKT_GRAPHQL_URL", "https://data.objkt.com/v3/graphql"),
		TokenPageLimit:  getEnvInt("TOKEN_PAGE_LIMIT", 1000),

		IPFSGateways:    gateways,
		GatewayListFile: getEnv("IPFS_GATEWAY_FILE", ""),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for the password
		DBName:     getEnv("DB_NAME", "tezbeat"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "tezbeat-audio"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		JWTSecret: getEnv("JWT_SECRET", "tezbeat-dev-secret"),

		FaucetUpstreamURL: getEnv("FAUCET_UPSTREAM_URL", ""),
		FaucetNetwork:     getEnv("FAUCET_NETWORK", "ghostnet"),
		FaucetMaxClaims:   getEnvInt("FAUCET_MAX_CLAIMS", 1),
		FaucetInviteHash:  os.Getenv("FAUCET_INVITE_HASH"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}

// splitGateways parses a comma- or newline-separated gateway list, ensuring
// every entry ends with a single trailing slash.
func splitGateways(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	gateways := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		gateways = append(gateways, strings.TrimRight(f, "/")+"/")
	}
	return gateways
}
