package jobs

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dionysia/internal/config"
	"dionysia/internal/logging"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local)

const plexMoviesJSON = `{"MediaContainer":{"Metadata":[
	{"ratingKey":"10","title":"Elf","year":2003,"Collection":[{"tag":"Christmas"}],"Media":[{"videoResolution":"1080"}]},
	{"ratingKey":"11","title":"Klaus","year":2019,"Media":[{"videoResolution":"4k"}]},
	{"ratingKey":"12","title":"Heat","year":1995,"Collection":[{"tag":"Christmas"}],"Media":[{"videoResolution":"sd"}]},
	{"ratingKey":"13","title":"Dune","year":2021,"Media":[{"videoResolution":"1080"}]},
	{"ratingKey":"14","title":"New Movie","year":2026,"Media":[{"videoResolution":"720"}]}
]}}`

const radarrMoviesJSON = `[
	{"id":1,"title":"Popular","year":2020,"hasFile":false,"isAvailable":true,"monitored":true,"tags":[],"inCinemas":"2020-01-01T00:00:00Z","ratings":{"imdb":{"votes":1000,"value":8.0}}},
	{"id":2,"title":"Obscure","year":2021,"hasFile":false,"isAvailable":true,"monitored":true,"tags":[],"inCinemas":"2021-01-01T00:00:00Z","ratings":{"imdb":{"votes":10,"value":5.0}}},
	{"id":3,"title":"Dropped","year":2010,"hasFile":false,"isAvailable":true,"monitored":false,"tags":[]},
	{"id":4,"title":"Kept","year":2011,"hasFile":false,"isAvailable":true,"monitored":false,"tags":[3]},
	{"id":5,"title":"Owned","year":2012,"hasFile":true,"isAvailable":true,"monitored":false,"tags":[]}
]`

type fakeServices struct {
	server *httptest.Server

	mu             sync.Mutex
	plexEdits      []url.Values
	traktWrites    map[string]string
	traktAuth      []string
	radarrSearches []string
	radarrDeletes  []string
}

func newFakeServices(t *testing.T) *fakeServices {
	t.Helper()
	f := &fakeServices{traktWrites: map[string]string{}}
	mux := http.NewServeMux()
	writeJSON := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}

	mux.HandleFunc("GET /plex/library/sections", writeJSON(`{"MediaContainer":{"Directory":[{"key":"1","title":"Movies","type":"movie"}]}}`))
	mux.HandleFunc("GET /plex/library/sections/1/all", writeJSON(plexMoviesJSON))
	mux.HandleFunc("PUT /plex/library/sections/1/all", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.plexEdits = append(f.plexEdits, r.URL.Query())
		f.mu.Unlock()
	})

	mux.HandleFunc("GET /trakt/users/alice/lists/xmas/items/movies", writeJSON(`[
		{"type":"movie","movie":{"title":"Elf","year":2003,"ids":{"imdb":"tt0319343"}}},
		{"type":"movie","movie":{"title":"Klaus","year":2019,"ids":{"imdb":"tt4729430"}}}
	]`))
	mux.HandleFunc("GET /trakt/users/alice/lists/cf/items/movies", writeJSON(`[
		{"type":"movie","movie":{"title":"One","year":2001,"ids":{"imdb":"tt1"}}},
		{"type":"movie","movie":{"title":"Two","year":2002,"ids":{"imdb":"tt2"}}}
	]`))
	mux.HandleFunc("GET /trakt/movies/trending", writeJSON(`[
		{"watchers":50,"movie":{"title":"Dune","year":2021}},
		{"watchers":40,"movie":{"title":"Klaus","year":2019}},
		{"watchers":30,"movie":{"title":"Not Here","year":2025}}
	]`))
	mux.HandleFunc("GET /trakt/movies/watched/weekly", writeJSON(`[{"watcher_count":5,"movie":{"title":"Heat","year":1995}}]`))
	traktWrite := func(status int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			f.mu.Lock()
			f.traktWrites[r.URL.Path] = string(data)
			f.traktAuth = append(f.traktAuth, r.Header.Get("Authorization"))
			f.mu.Unlock()
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("POST /trakt/users/alice/lists/cf/items", traktWrite(http.StatusCreated, `{"added":{"movies":1}}`))
	mux.HandleFunc("POST /trakt/users/alice/lists/cf/items/remove", traktWrite(http.StatusOK, `{"deleted":{"movies":1}}`))
	mux.HandleFunc("POST /trakt/oauth/token", writeJSON(`{"access_token":"fresh","refresh_token":"r","token_type":"bearer","expires_in":7776000}`))

	mux.HandleFunc("GET /feeds/collections.json", writeJSON(`[{"collection_name":"Noir","list_movies":[{"title":"Heat","year":1995},{"title":"New Movie","year":null}]}]`))
	mux.HandleFunc("GET /feeds/cf.json", writeJSON(`[{"title":"Two","imdb_id":"tt2"},{"title":"Three","imdb_id":"tt3"}]`))

	mux.HandleFunc("GET /radarr/api/v3/movie", writeJSON(radarrMoviesJSON))
	mux.HandleFunc("GET /radarr/api/v3/tag", writeJSON(`[{"id":3,"label":"watched"}]`))
	mux.HandleFunc("POST /radarr/api/v3/command", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.radarrSearches = append(f.radarrSearches, string(data))
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	mux.HandleFunc("DELETE /radarr/api/v3/movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.radarrDeletes = append(f.radarrDeletes, r.PathValue("id")+"?"+r.URL.RawQuery)
		f.mu.Unlock()
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeServices) deps(t *testing.T) *Deps {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheFile = filepath.Join(base, "cache.db")
	cfg.Paths.LogFile = filepath.Join(base, "activity.log")
	cfg.Paths.TraktTokenFile = filepath.Join(base, "trakt_token.json")
	cfg.Plex.URL = f.server.URL + "/plex"
	cfg.Plex.Token = "plex-token"
	cfg.Radarr.BaseURL = f.server.URL + "/radarr"
	cfg.Radarr.APIKey = "radarr-key"
	cfg.Trakt.BaseURL = f.server.URL + "/trakt"
	cfg.Trakt.ClientID = "trakt-id"
	cfg.Trakt.ClientSecret = "trakt-secret"
	cfg.Retry.MaxTries = 1
	cfg.Retry.InitialIntervalMS = 1
	cfg.Retry.MaxIntervalSec = 1
	cfg.Collections = map[string]config.CollectionList{
		"christmas": {Agent: config.AgentTrakt, User: "alice", ListID: "xmas", Name: "Christmas"},
		"noir":      {Agent: config.AgentJSON, URL: f.server.URL + "/feeds/collections.json"},
	}
	cfg.ExternalLists = map[string]config.ExternalList{
		"cf": {User: "alice", ListID: "cf", FeedURL: f.server.URL + "/feeds/cf.json"},
	}

	deps := NewDeps(&cfg, logging.NewNop(), nil)
	deps.HTTP = f.server.Client()
	deps.Now = func() time.Time { return fixedNow }
	return deps
}
