package movie

import "testing"

func TestRefKeyPrefersExternalIDs(t *testing.T) {
	tests := []struct {
		name string
		ref  Ref
		want string
	}{
		{"imdb", Ref{Title: "Heat", Year: 1995, IMDBID: "TT0113277", TMDBID: 949}, "imdb:tt0113277"},
		{"tmdb", Ref{Title: "Heat", Year: 1995, TMDBID: 949}, "tmdb:949"},
		{"title", Ref{Title: "Amélie", Year: 2001}, "title:amelie|2001"},
		{"no year", Ref{Title: "Heat"}, "title:heat|0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Key(); got != tt.want {
				t.Fatalf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRefKeyFoldsTitleVariants(t *testing.T) {
	a := Ref{Title: "Amélie", Year: 2001}
	b := Ref{Title: "AMELIE", Year: 2001}
	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %q and %q", a.Key(), b.Key())
	}
	if a.Key() == (Ref{Title: "Amélie", Year: 2002}).Key() {
		t.Fatal("expected different years to produce different keys")
	}
}

func TestRefString(t *testing.T) {
	if got := (Ref{Title: "Heat", Year: 1995}).String(); got != "Heat (1995)" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Ref{IMDBID: "tt0113277"}).String(); got != "tt0113277" {
		t.Fatalf("String() = %q", got)
	}
}

func TestWithDefaultYear(t *testing.T) {
	if got := (Ref{Title: "New"}).WithDefaultYear(2026).Year; got != 2026 {
		t.Fatalf("Year = %d, want 2026", got)
	}
	if got := (Ref{Title: "Old", Year: 1990}).WithDefaultYear(2026).Year; got != 1990 {
		t.Fatalf("Year = %d, want 1990", got)
	}
	if got := Keys([]Ref{{IMDBID: "tt1"}, {TMDBID: 2}}); len(got) != 2 || got[0] != "imdb:tt1" || got[1] != "tmdb:2" {
		t.Fatalf("Keys() = %v", got)
	}
}
