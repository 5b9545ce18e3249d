package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const radarrMoviesJSON = `[
	{"id":1,"title":"Popular","year":2020,"hasFile":false,"isAvailable":true,"monitored":true,"tags":[],"inCinemas":"2020-01-01T00:00:00Z","ratings":{"imdb":{"votes":1000,"value":8.0}}},
	{"id":2,"title":"Obscure","year":2021,"hasFile":false,"isAvailable":true,"monitored":true,"tags":[],"inCinemas":"2021-01-01T00:00:00Z","ratings":{"imdb":{"votes":10,"value":5.0}}},
	{"id":3,"title":"Dropped","year":2010,"hasFile":false,"isAvailable":true,"monitored":false,"tags":[]},
	{"id":4,"title":"Kept","year":2011,"hasFile":false,"isAvailable":true,"monitored":false,"tags":[3]}
]`

type fakeRadarr struct {
	server *httptest.Server

	mu       sync.Mutex
	deletes  []string
	searches int
}

func newFakeRadarr(t *testing.T) *fakeRadarr {
	t.Helper()
	f := &fakeRadarr{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(radarrMoviesJSON))
	})
	mux.HandleFunc("GET /api/v3/tag", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":3,"label":"watched"}]`))
	})
	mux.HandleFunc("DELETE /api/v3/movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deletes = append(f.deletes, r.PathValue("id")+"?"+r.URL.RawQuery)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("POST /api/v3/command", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.searches++
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeRadarr) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches
}

func (f *fakeRadarr) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

type cliTestEnv struct {
	baseDir    string
	configPath string
	cacheFile  string
	radarr     *fakeRadarr
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv(envConfig, "")
	t.Setenv(envCacheFile, "")
	t.Setenv(envLogFile, "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		cacheFile:  filepath.Join(base, "cache", "cache.db"),
		radarr:     newFakeRadarr(t),
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
cache_file = %q
log_file = %q
trakt_token_file = %q

[radarr]
base_url = %q
api_key = "radarr-key"

[retry]
max_tries = 1
`,
		env.cacheFile,
		filepath.Join(env.baseDir, "logs", "activity.log"),
		filepath.Join(env.baseDir, "trakt_token.json"),
		env.radarr.server.URL,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
