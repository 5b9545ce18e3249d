package plex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dionysia/internal/memo"
	"dionysia/internal/movie"
	"dionysia/internal/retry"
)

const sectionsJSON = `{"MediaContainer":{"Directory":[{"key":"1","title":"Movies","type":"movie"},{"key":"2","title":"TV Shows","type":"show"}]}}`

const moviesJSON = `{"MediaContainer":{"Metadata":[
	{"ratingKey":"10","title":"Amélie","year":2001,"addedAt":1000,"Collection":[{"tag":"French"}],"Media":[{"videoResolution":"1080"}]},
	{"ratingKey":"11","title":"Heat","year":1995,"Media":[{"videoResolution":"sd"}]},
	{"ratingKey":"12","title":"Dune","year":2021,"Collection":[{"tag":"Trakt Trending"}],"Media":[{"videoResolution":"4k"}]}
]}}`

type fakePlex struct {
	mu    sync.Mutex
	edits []url.Values
	hdr   http.Header
}

func (f *fakePlex) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.hdr = r.Header.Clone()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/library/sections":
			_, _ = w.Write([]byte(sectionsJSON))
		case r.Method == http.MethodGet && r.URL.Path == "/library/sections/1/all":
			if r.URL.Query().Get("type") != "1" {
				t.Errorf("expected type=1, got %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(moviesJSON))
		case r.Method == http.MethodPut && r.URL.Path == "/library/sections/1/all":
			f.edits = append(f.edits, r.URL.Query())
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestCatalog(t *testing.T) (*Catalog, *fakePlex) {
	t.Helper()
	fake := &fakePlex{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	client, err := New(Options{
		URL:              server.URL,
		Token:            "plex-token",
		ClientIdentifier: "client-1",
		HTTP:             server.Client(),
		Retry:            retry.Policy{MaxTries: 1, InitialInterval: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	catalog, err := client.OpenCatalog(context.Background(), "movies")
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	return catalog, fake
}

func TestNewRequiresURLAndToken(t *testing.T) {
	if _, err := New(Options{URL: "http://plex"}); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestOpenCatalogSendsPlexHeaders(t *testing.T) {
	catalog, fake := newTestCatalog(t)
	if catalog.Len() != 3 {
		t.Fatalf("expected 3 movies, got %d", catalog.Len())
	}
	if fake.hdr.Get("X-Plex-Token") != "plex-token" || fake.hdr.Get("X-Plex-Client-Identifier") != "client-1" {
		t.Fatalf("missing plex headers: %v", fake.hdr)
	}
	if fake.hdr.Get("X-Plex-Product") != productName {
		t.Fatalf("product header = %q", fake.hdr.Get("X-Plex-Product"))
	}
}

func TestSectionKeyUnknownLibrary(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	if _, err := catalog.client.SectionKey(context.Background(), "Anime"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestFindNormalizesTitle(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	m, ok := catalog.Find(movie.Ref{Title: "amelie", Year: 2001})
	if !ok || m.RatingKey != "10" {
		t.Fatalf("expected Amélie, got %+v %v", m, ok)
	}
	if _, ok := catalog.Find(movie.Ref{Title: "Amelie", Year: 2002}); ok {
		t.Fatal("year must match")
	}
	found := catalog.Resolve(context.Background(), []movie.Ref{{Title: "Heat", Year: 1995}, {Title: "Dune"}}, 2021)
	if len(found) != 2 || found[1].RatingKey != "12" {
		t.Fatalf("resolve with default year: %+v", found)
	}
}

func TestSuggestClosestTitle(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	if got, ok := catalog.Suggest("Dune Part One (2021)"); !ok || got != "Dune (2021)" {
		t.Fatalf("suggestion = %q %v", got, ok)
	}
}

func TestCollectionEditsUpdateSnapshot(t *testing.T) {
	catalog, fake := newTestCatalog(t)
	ctx := context.Background()
	amelie, _ := catalog.Find(movie.Ref{Title: "Amélie", Year: 2001})

	target := CollectionTarget{Catalog: catalog, Name: "Favorites"}
	if err := target.Add(ctx, []Movie{amelie}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(fake.edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(fake.edits))
	}
	add := fake.edits[0]
	if add.Get("id") != "10" || add.Get("type") != "1" {
		t.Fatalf("unexpected edit target %v", add)
	}
	if add.Get("collection[0].tag.tag") != "French" || add.Get("collection[1].tag.tag") != "Favorites" {
		t.Fatalf("unexpected tags %v", add)
	}
	members := catalog.Collection("favorites")
	if len(members) != 1 || members[0].RatingKey != "10" {
		t.Fatalf("snapshot not updated: %+v", members)
	}

	if err := target.Add(ctx, []Movie{amelie}); err != nil || len(fake.edits) != 1 {
		t.Fatalf("second add should be a no-op: %v edits=%d", err, len(fake.edits))
	}

	if err := target.Remove(ctx, members); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	remove := fake.edits[1]
	if remove.Get("collection[].tag.tag-") != "Favorites" {
		t.Fatalf("unexpected remove %v", remove)
	}
	if len(catalog.Collection("Favorites")) != 0 {
		t.Fatal("snapshot still lists the removed tag")
	}
}

func TestSetAddedAtFormat(t *testing.T) {
	catalog, fake := newTestCatalog(t)
	dune, _ := catalog.Find(movie.Ref{Title: "Dune", Year: 2021})
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	if err := catalog.SetAddedAt(context.Background(), dune, at); err != nil {
		t.Fatalf("SetAddedAt: %v", err)
	}
	if got := fake.edits[0].Get("addedAt.value"); got != "2026-03-04 05:06:07" {
		t.Fatalf("addedAt.value = %q", got)
	}
	if !dune.HasResolution("1080", "4K") {
		t.Fatal("expected 4k resolution to match")
	}
}

func TestClientIdentifierIsRemembered(t *testing.T) {
	store, err := memo.Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	first := ClientIdentifier(context.Background(), store)
	second := ClientIdentifier(context.Background(), store)
	if first == "" || first != second {
		t.Fatalf("identifiers differ: %q %q", first, second)
	}
	if len(first) != 32 {
		t.Fatalf("expected dash-free uuid, got %q", first)
	}
}
