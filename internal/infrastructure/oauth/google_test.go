package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestProvider(t *testing.T, userInfo string) *GoogleProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userInfo))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	p := NewGoogleProvider("client", "secret", "http://localhost/callback")
	p.config.Endpoint = oauth2.Endpoint{AuthURL: server.URL + "/auth", TokenURL: server.URL + "/token"}
	p.userInfoURL = server.URL + "/userinfo"
	return p
}

func TestExchange(t *testing.T) {
	p := newTestProvider(t, `{"email":"leela@example.com","verified_email":true,"name":"Leela","picture":"https://pic"}`)

	identity, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "leela@example.com", identity.Email)
	assert.Equal(t, "Leela", identity.Name)
	assert.Equal(t, "google", identity.Provider)
}

func TestExchangeRejectsUnverifiedEmail(t *testing.T) {
	p := newTestProvider(t, `{"email":"leela@example.com","verified_email":false}`)
	_, err := p.Exchange(context.Background(), "code")
	assert.Error(t, err)
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	p := NewGoogleProvider("client", "secret", "http://localhost/callback")
	assert.True(t, p.Enabled())

	state, err := NewState()
	require.NoError(t, err)

	u, err := url.Parse(p.AuthCodeURL(state))
	require.NoError(t, err)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
}
