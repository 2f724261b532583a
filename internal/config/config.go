package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven configuration for the service.
type Config struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	BaseURL     string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	Currency string `envconfig:"CURRENCY" default:"SGD"`

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`

	PayPalClientID string `envconfig:"PAYPAL_CLIENT_ID"`
	PayPalSecret   string `envconfig:"PAYPAL_CLIENT_SECRET"`
	// Sandbox: https://api-m.sandbox.paypal.com
	// Live:    https://api-m.paypal.com
	PayPalAPIBase string `envconfig:"PAYPAL_API" default:"https://api-m.sandbox.paypal.com"`

	HitPayAPIKey      string `envconfig:"HITPAY_API_KEY"`
	HitPayAPIBase     string `envconfig:"HITPAY_API_BASE" default:"https://api.sandbox.hit-pay.com"`
	HitPayWebhookSalt string `envconfig:"HITPAY_WEBHOOK_SALT"`

	SMTPHost         string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort         int    `envconfig:"SMTP_PORT" default:"587"`
	GmailUser        string `envconfig:"GMAIL_USER"`
	GmailAppPassword string `envconfig:"GMAIL_APP_PASSWORD"`

	ReceiptsDir string `envconfig:"RECEIPTS_DIR" default:"./receipts"`
	UploadsDir  string `envconfig:"UPLOADS_DIR" default:"./uploads"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
