package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Cache struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cache"`

	OTP struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"otp"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers       []string `koanf:"brokers"`
		GroupID       string   `koanf:"group_id"`
		DeliveryTopic string   `koanf:"delivery_topic"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`

	Pricing struct {
		TaxRate   string `koanf:"tax_rate"`    // fraction, e.g. "0.05"
		PerKmRate string `koanf:"per_km_rate"` // currency units per km
	} `koanf:"pricing"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env-specific overlay (dev/staging/prod); optional for local runs
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variable overrides (prefix DELIV_, nested with __)
	// e.g. DELIV_MYSQL__DSN, DELIV_SECURITY__JWT_SECRET
	if err := k.Load(env.Provider("DELIV_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "DELIV_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	for _, rate := range []struct{ key, val string }{
		{"pricing.tax_rate", c.Pricing.TaxRate},
		{"pricing.per_km_rate", c.Pricing.PerKmRate},
	} {
		d, err := decimal.NewFromString(rate.val)
		if err != nil {
			return fmt.Errorf("%s: %w", rate.key, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative", rate.key)
		}
	}
	return nil
}

// TaxRate returns the validated tax rate. Call after Load.
func (c Config) TaxRate() decimal.Decimal {
	return decimal.RequireFromString(c.Pricing.TaxRate)
}

// PerKmRate returns the validated delivery fee per km. Call after Load.
func (c Config) PerKmRate() decimal.Decimal {
	return decimal.RequireFromString(c.Pricing.PerKmRate)
}
