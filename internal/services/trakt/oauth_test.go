package trakt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestOAuthConfigEndpoints(t *testing.T) {
	conf := OAuthConfig("https://api.trakt.tv/", "id", "secret", "urn:ietf:wg:oauth:2.0:oob")
	if conf.Endpoint.AuthURL != "https://trakt.tv/oauth/authorize" {
		t.Fatalf("auth url = %s", conf.Endpoint.AuthURL)
	}
	if conf.Endpoint.TokenURL != "https://api.trakt.tv/oauth/token" {
		t.Fatalf("token url = %s", conf.Endpoint.TokenURL)
	}
}

func TestAuthorizeSavesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("code") != "abc" || r.Form.Get("client_id") != "id" {
			t.Fatalf("unexpected form %v", r.Form)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"acc","refresh_token":"ref","token_type":"bearer","expires_in":7776000}`))
	}))
	defer server.Close()

	conf := OAuthConfig(server.URL, "id", "secret", "urn:ietf:wg:oauth:2.0:oob")
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, server.Client())

	token, err := Authorize(ctx, conf, store, " abc ")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if token.AccessToken != "acc" {
		t.Fatalf("token = %+v", token)
	}
	saved, err := store.Load()
	if err != nil || saved == nil || saved.RefreshToken != "ref" {
		t.Fatalf("saved token = %+v err=%v", saved, err)
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("token file mode = %v", info.Mode().Perm())
	}
}

func TestTokenSourceWithoutSavedToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "missing.json"))
	ts, err := TokenSource(context.Background(), OAuthConfig("https://api.trakt.tv", "id", "s", ""), store, nil)
	if err != nil || ts != nil {
		t.Fatalf("expected nil source, got %v %v", ts, err)
	}
}

type sequenceSource struct {
	tokens []*oauth2.Token
	err    error
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	token := s.tokens[0]
	if len(s.tokens) > 1 {
		s.tokens = s.tokens[1:]
	}
	return token, nil
}

func TestPersistingSourceSavesRefreshedToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	expiry := time.Now().Add(time.Hour)
	source := &persistingSource{
		base: &sequenceSource{tokens: []*oauth2.Token{
			{AccessToken: "old", Expiry: expiry},
			{AccessToken: "new", RefreshToken: "r2", Expiry: expiry},
		}},
		store:  store,
		last:   "old",
		logger: newNopLogger(),
	}

	if _, err := source.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if saved, _ := store.Load(); saved != nil {
		t.Fatalf("unchanged token should not be saved, got %+v", saved)
	}
	if _, err := source.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}
	saved, err := store.Load()
	if err != nil || saved == nil || saved.AccessToken != "new" {
		t.Fatalf("expected refreshed token saved, got %+v err=%v", saved, err)
	}

	failing := &persistingSource{base: &sequenceSource{err: errors.New("boom")}, store: store, logger: newNopLogger()}
	if _, err := failing.Token(); err == nil {
		t.Fatal("expected refresh error")
	}
}
