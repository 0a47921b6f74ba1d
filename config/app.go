package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`
	LogFormat   string `env:"LOG_FORMAT" default:"json"`

	PayOSBaseURL     string `env:"PAYOS_BASE_URL"`
	PayOSClientID    string `env:"PAYOS_CLIENT_ID"`
	PayOSAPIKey      string `env:"PAYOS_API_KEY"`
	PayOSChecksumKey string `env:"PAYOS_CHECKSUM_KEY"`

	S3Bucket string `env:"S3_BUCKET"`
	S3Region string `env:"S3_REGION" default:"ap-southeast-1"`

	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" default:"5m"`
	CashHoldTTL     time.Duration `env:"CASH_HOLD_TTL" default:"24h"`
	TransferHoldTTL time.Duration `env:"TRANSFER_HOLD_TTL" default:"15m"`
}
