package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:7233", cfg.TemporalHostPort)
	assert.Equal(t, "default", cfg.TemporalNamespace)
	assert.Equal(t, ":8085", cfg.GatewayAddr)
	assert.Equal(t, "https://ifsc.razorpay.com", cfg.IFSCBaseURL)
	assert.Equal(t, "sandbox", cfg.DigioEnvironment)
	assert.Equal(t, "postapproval", cfg.RedisNamespace)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GATEWAY_ADDR", ":9999")
	t.Setenv("IDENTITY_BASE_URL", "http://identity.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.GatewayAddr)
	assert.Equal(t, "http://identity.internal", cfg.IdentityBaseURL)
}

func TestLoad_RejectsBadDigioEnvironment(t *testing.T) {
	t.Setenv("DIGIO_ENVIRONMENT", "staging")

	_, err := Load()
	assert.Error(t, err)
}
