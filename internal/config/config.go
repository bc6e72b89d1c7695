package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// QRPolicyStrict rejects a wallet payment when QR encoding fails;
// QRPolicyDegrade stores the payment without a QR payload instead.
const (
	QRPolicyStrict  = "strict"
	QRPolicyDegrade = "degrade"
)

const devSecret = "medidesk-dev-secret"

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	UploadDir      string   `mapstructure:"UPLOAD_DIR"`
	MaxUploadBytes int64    `mapstructure:"MAX_UPLOAD_BYTES"`
	PaymentAccount string   `mapstructure:"PAYMENT_ACCOUNT"`
	QRPolicy       string   `mapstructure:"PAYMENT_QR_POLICY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("JWT_SECRET", devSecret)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("PAYMENT_ACCOUNT", "")
	v.SetDefault("PAYMENT_QR_POLICY", QRPolicyStrict)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("UPLOAD_DIR")
	v.BindEnv("MAX_UPLOAD_BYTES")
	v.BindEnv("PAYMENT_ACCOUNT")
	v.BindEnv("PAYMENT_QR_POLICY")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Error responses include internal detail. Do NOT use in production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. The development
// signing secret and the seeded default passwords must be overridden before
// a production deployment.
func (c *Config) Validate() error {
	if c.QRPolicy != QRPolicyStrict && c.QRPolicy != QRPolicyDegrade {
		return fmt.Errorf("PAYMENT_QR_POLICY must be %q or %q, got %q", QRPolicyStrict, QRPolicyDegrade, c.QRPolicy)
	}
	if c.IsProduction() && c.JWTSecret == devSecret {
		return fmt.Errorf("JWT_SECRET must be overridden in production")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}
