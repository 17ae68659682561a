package app

import (
	"strings"

	"github.com/charlesng35/teamkit/internal/auth"
	"github.com/charlesng35/teamkit/internal/billing"
	"github.com/charlesng35/teamkit/internal/cache"
	"github.com/charlesng35/teamkit/internal/database"
	"github.com/charlesng35/teamkit/pkg/crypto"
)

// SessionCodecConfig converts AuthConfig into the parameters expected by the session codec.
// Callers must run ApplyRuntimeDefaults first so a secret is present.
func (c AuthConfig) SessionCodecConfig() (auth.SessionCodecConfig, error) {
	secret, err := DecodeSecret(c.Session.Secret)
	if err != nil {
		return auth.SessionCodecConfig{}, err
	}
	return auth.SessionCodecConfig{Secret: string(secret)}, nil
}

// SessionStoreConfig converts AuthConfig into cookie settings.
func (c AuthConfig) SessionStoreConfig() auth.SessionStoreConfig {
	ttl := c.Session.TTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	name := strings.TrimSpace(c.Session.CookieName)
	if name == "" {
		name = auth.DefaultSessionCookie
	}

	return auth.SessionStoreConfig{
		CookieName: name,
		TTL:        ttl,
		Secure:     c.Session.Secure,
	}
}

// HasherConfig converts AuthConfig into bcrypt parameters.
func (c AuthConfig) HasherConfig() crypto.HasherConfig {
	return crypto.HasherConfig{
		Cost:          c.Password.Cost,
		MaxConcurrent: c.Password.MaxConcurrent,
	}
}

// CheckoutConfig converts BillingConfig into the billing package representation.
func (c Config) CheckoutConfig() billing.Config {
	trial := c.Billing.TrialDays
	if trial <= 0 {
		trial = billing.DefaultTrialDays
	}
	return billing.Config{
		CheckoutURL: strings.TrimSpace(c.Billing.CheckoutURL),
		BaseURL:     strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/"),
		TrialDays:   trial,
	}
}

// RedisClientConfig converts the application cache configuration into the cache package representation.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
		Prefix:   c.Redis.Prefix,
	}
}

// ConnectionConfig converts DatabaseConfig into database.Open parameters, picking the
// host settings that match the driver.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	cfg := database.Config{
		Driver:          strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:            c.Path,
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}

	var host DBAuthConfig
	switch cfg.Driver {
	case "postgres", "postgresql":
		host = c.Postgres
	case "mysql":
		host = c.MySQL
	default:
		return cfg
	}

	cfg.Host = host.Host
	cfg.Port = host.Port
	cfg.Name = host.Database
	cfg.User = host.Username
	cfg.Password = host.Password
	return cfg
}
