// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Upload drivers
const (
	UploadDisk = "disk"
	UploadS3   = "s3"
)

// Config holds all server settings
type Config struct {
	Port      int
	PublicURL string // scheme://host[:port] clients use to reach the server
	MenuURL   string // encoded in the counter QR code

	LogLevel  string
	LogFormat string

	RequestTimeout time.Duration

	StoreDriver   string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	UploadDriver    string
	UploadDir       string
	MaxUploadBytes  int64
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PathStyle     bool
	S3PublicBaseURL string
	S3AccessKeyID   string // optional; the AWS default chain is used when empty
	S3SecretKey     string
}

// Load reads .env (if present) and then SNACK_* environment variables
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only
func FromEnv() Config {
	port := GetInt("SNACK_PORT", 5000)
	publicURL := GetString("SNACK_PUBLIC_URL", "http://localhost:"+strconv.Itoa(port))

	return Config{
		Port:      port,
		PublicURL: publicURL,
		MenuURL:   GetString("SNACK_MENU_URL", strings.TrimSuffix(publicURL, "/")+"/api/snacks"),

		LogLevel:  GetString("SNACK_LOG_LEVEL", "info"),
		LogFormat: GetString("SNACK_LOG_FORMAT", "text"),

		RequestTimeout: GetDuration("SNACK_REQUEST_TIMEOUT", 60*time.Second),

		StoreDriver:   strings.ToLower(GetString("SNACK_STORE", StoreSQLite)),
		SQLitePath:    GetString("SNACK_SQLITE_PATH", "snacks.db"),
		MongoURI:      GetString("SNACK_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: GetString("SNACK_MONGO_DATABASE", "snacks"),
		MongoTimeout:  GetDuration("SNACK_MONGO_TIMEOUT", 10*time.Second),

		UploadDriver:    strings.ToLower(GetString("SNACK_UPLOAD_DRIVER", UploadDisk)),
		UploadDir:       GetString("SNACK_UPLOAD_DIR", "uploads"),
		MaxUploadBytes:  int64(GetInt("SNACK_MAX_UPLOAD_BYTES", 10<<20)),
		S3Bucket:        GetString("SNACK_S3_BUCKET", ""),
		S3Region:        GetString("SNACK_S3_REGION", "us-east-1"),
		S3Endpoint:      GetString("SNACK_S3_ENDPOINT", ""),
		S3PathStyle:     GetBool("SNACK_S3_PATH_STYLE", false),
		S3PublicBaseURL: GetString("SNACK_S3_PUBLIC_BASE_URL", ""),
		S3AccessKeyID:   GetString("SNACK_S3_ACCESS_KEY_ID", ""),
		S3SecretKey:     GetString("SNACK_S3_SECRET_ACCESS_KEY", ""),
	}
}

// GetString returns the env value for key or fallback when unset
func GetString(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return val
}

// GetInt returns the env value for key parsed as int, or fallback
func GetInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return n
}

// GetBool returns the env value for key parsed as bool, or fallback
func GetBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return b
}

// GetDuration accepts Go durations ("5s") or a bare number of seconds
func GetDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	val = strings.TrimSpace(val)
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
