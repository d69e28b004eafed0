package esign

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigioSigner_SubmitCarriesBrandingAndRedirect(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/client/document/DID-1/sign", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewDigioSigner(srv.URL, Options{
		Environment: "sandbox",
		LogoURL:     "https://cdn.example/logo.png",
		Theme:       "light",
		RedirectURL: "https://app.example/mandate/return",
	})

	require.NoError(t, s.Submit(context.Background(), "DID-1", "9876543210", "tok-1"))

	assert.Equal(t, "9876543210", got["identifier"])
	assert.Equal(t, "sandbox", got["environment"])
	assert.Equal(t, "https://app.example/mandate/return", got["redirect_url"])
	assert.Equal(t, "tok-1", got["token_id"])
}

func TestDigioSigner_SubmitOmitsEmptyToken(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	s := NewDigioSigner(srv.URL, Options{Environment: "sandbox"})
	require.NoError(t, s.Submit(context.Background(), "DID-1", "9876543210", ""))

	_, present := got["token_id"]
	assert.False(t, present)
}

func TestDigioSigner_UnconfiguredReportsUnavailable(t *testing.T) {
	s := NewDigioSigner("", Options{})

	assert.ErrorIs(t, s.Init(context.Background()), ErrUnavailable)
	assert.ErrorIs(t, s.Submit(context.Background(), "DID-1", "x", ""), ErrUnavailable)
}

func TestNoopSigner_RecordsCalls(t *testing.T) {
	s := &NoopSigner{}

	assert.ErrorIs(t, s.Init(context.Background()), ErrUnavailable)
	assert.ErrorIs(t, s.Submit(context.Background(), "DID-1", "x", ""), ErrUnavailable)
	assert.NoError(t, s.Cancel(context.Background(), "DID-1"))

	assert.Equal(t, 1, s.InitCalls)
	assert.Equal(t, []string{"DID-1"}, s.SubmitCalls)
	assert.Equal(t, []string{"DID-1"}, s.CancelCalls)
}
