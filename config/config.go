// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// TemporalHostPort is the Temporal frontend address (e.g. localhost:7233).
	TemporalHostPort string `mapstructure:"TEMPORAL_HOST_PORT"`
	// TemporalNamespace is the Temporal namespace for all workflows.
	TemporalNamespace string `mapstructure:"TEMPORAL_NAMESPACE"`
	// GatewayAddr is the address the HTTP gateway listens on (e.g. :8085).
	GatewayAddr string `mapstructure:"GATEWAY_ADDR"`

	// IdentityBaseURL is the identity/OTP service (Aadhaar save, OTP, DigiLocker fallback).
	IdentityBaseURL string `mapstructure:"IDENTITY_BASE_URL"`
	// FaceBaseURL is the face verification service (photograph, liveliness, face match).
	FaceBaseURL string `mapstructure:"FACE_BASE_URL"`
	// MandateBaseURL is the mandate/banking service.
	MandateBaseURL string `mapstructure:"MANDATE_BASE_URL"`
	// AgreementBaseURL is the agreement service.
	AgreementBaseURL string `mapstructure:"AGREEMENT_BASE_URL"`
	// StatusBaseURL is the post-approval status service.
	StatusBaseURL string `mapstructure:"STATUS_BASE_URL"`
	// ChatBaseURL is the chat/session channel service.
	ChatBaseURL string `mapstructure:"CHAT_BASE_URL"`
	// IFSCBaseURL is the external bank-code lookup (e.g. https://ifsc.razorpay.com).
	IFSCBaseURL string `mapstructure:"IFSC_BASE_URL"`
	// DeviceBridgeURL is the patient-side capture bridge (camera + geolocation).
	DeviceBridgeURL string `mapstructure:"DEVICE_BRIDGE_URL"`

	// DigioBaseURL is the e-sign SDK backend; empty disables the real adapter
	// and the flow falls back to opening the mandate authentication URL.
	DigioBaseURL string `mapstructure:"DIGIO_BASE_URL"`
	// DigioEnvironment selects the SDK environment ("sandbox" or "production").
	DigioEnvironment string `mapstructure:"DIGIO_ENVIRONMENT"`
	// DigioLogoURL and DigioTheme brand the embedded signing view.
	DigioLogoURL string `mapstructure:"DIGIO_LOGO_URL"`
	DigioTheme   string `mapstructure:"DIGIO_THEME"`
	// DigioRedirectURL is where the signing flow returns the user; the gateway
	// serves this path and signals the waiting workflow.
	DigioRedirectURL string `mapstructure:"DIGIO_REDIRECT_URL"`

	// RedisAddr enables the redis session store when set; empty uses memory.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisNamespace prefixes all session keys.
	RedisNamespace string `mapstructure:"REDIS_NAMESPACE"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("TEMPORAL_HOST_PORT", "localhost:7233")
	v.SetDefault("TEMPORAL_NAMESPACE", "default")
	v.SetDefault("GATEWAY_ADDR", ":8085")
	v.SetDefault("IDENTITY_BASE_URL", "")
	v.SetDefault("FACE_BASE_URL", "")
	v.SetDefault("MANDATE_BASE_URL", "")
	v.SetDefault("AGREEMENT_BASE_URL", "")
	v.SetDefault("STATUS_BASE_URL", "")
	v.SetDefault("CHAT_BASE_URL", "")
	v.SetDefault("IFSC_BASE_URL", "https://ifsc.razorpay.com")
	v.SetDefault("DEVICE_BRIDGE_URL", "")
	v.SetDefault("DIGIO_BASE_URL", "")
	v.SetDefault("DIGIO_ENVIRONMENT", "sandbox")
	v.SetDefault("DIGIO_LOGO_URL", "")
	v.SetDefault("DIGIO_THEME", "light")
	v.SetDefault("DIGIO_REDIRECT_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_NAMESPACE", "postapproval")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GatewayAddr == "" {
		return nil, errors.New("config: GATEWAY_ADDR must be set")
	}
	if cfg.TemporalHostPort == "" {
		return nil, errors.New("config: TEMPORAL_HOST_PORT must be set")
	}
	if cfg.DigioEnvironment != "sandbox" && cfg.DigioEnvironment != "production" {
		return nil, errors.New("config: DIGIO_ENVIRONMENT must be sandbox or production")
	}

	return &cfg, nil
}
