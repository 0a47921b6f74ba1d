package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func Load() App {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		Env:         getenv("APP_ENV", "dev"),
		LogFormat:   getenv("LOG_FORMAT", "json"),

		PayOSBaseURL:     getenv("PAYOS_BASE_URL", "https://api-merchant.payos.vn"),
		PayOSClientID:    os.Getenv("PAYOS_CLIENT_ID"),
		PayOSAPIKey:      os.Getenv("PAYOS_API_KEY"),
		PayOSChecksumKey: os.Getenv("PAYOS_CHECKSUM_KEY"),

		S3Bucket: os.Getenv("S3_BUCKET"),
		S3Region: getenv("S3_REGION", "ap-southeast-1"),

		SweepInterval:   getdur("SWEEP_INTERVAL", 5*time.Minute),
		CashHoldTTL:     getdur("CASH_HOLD_TTL", 24*time.Hour),
		TransferHoldTTL: getdur("TRANSFER_HOLD_TTL", 15*time.Minute),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration env, using default", "key", k, "default", def)
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
