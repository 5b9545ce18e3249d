package radarr

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func ids(movies []Movie) []int {
	out := make([]int, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.ID)
	}
	return out
}

func equalIDs(got []Movie, want ...int) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

var now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleMovies() []Movie {
	yes := true
	return []Movie{
		{ID: 1, IsAvailable: true, InCinemas: date(2000, 1, 1), Ratings: &Ratings{Votes: 1000, Value: 8.0}},
		{ID: 2, IsAvailable: true, InCinemas: date(2016, 1, 1), Ratings: &Ratings{Votes: 995, Value: 7.95}},
		{ID: 3, IsAvailable: true, InCinemas: date(2020, 1, 1), Ratings: &Ratings{Votes: 10, Value: 8.0}},
		{ID: 4, IsAvailable: false, InCinemas: date(1990, 1, 1), Ratings: &Ratings{Votes: 5000, Value: 9.9}},
		{ID: 5, HasFile: true, IsAvailable: true, InCinemas: date(1980, 1, 1), Ratings: &Ratings{Votes: 9000, Value: 9.9}},
		{ID: 6, Downloaded: &yes, IsAvailable: true, Ratings: &Ratings{Votes: 9000, Value: 9.9}},
		{ID: 7, IsAvailable: true, InCinemas: date(1970, 1, 1)},
	}
}

func TestComputeStatsOnlyEligibleWithRatings(t *testing.T) {
	stats := ComputeStats(sampleMovies(), now)
	if stats.HighestVotes != 1000 || stats.HighestRating != 8.0 {
		t.Fatalf("unexpected maxima %+v", stats)
	}
	if !stats.Oldest.Equal(*date(2000, 1, 1)) {
		t.Fatalf("oldest = %v", stats.Oldest)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, now)
	if stats.HighestVotes != 0 || stats.HighestRating != 0 || !stats.Oldest.Equal(now) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestSelectByRatingIncludesTies(t *testing.T) {
	if got := SelectByRating(sampleMovies(), 0.99, now); !equalIDs(got, 1, 2, 3) {
		t.Fatalf("0.99 cutoff got %v", ids(got))
	}
	if got := SelectByRating(sampleMovies(), 1.0, now); !equalIDs(got, 1, 3) {
		t.Fatalf("1.0 cutoff got %v", ids(got))
	}
}

func TestSelectByVotes(t *testing.T) {
	if got := SelectByVotes(sampleMovies(), 0.99, now); !equalIDs(got, 1, 2) {
		t.Fatalf("0.99 cutoff got %v", ids(got))
	}
	if got := SelectByVotes(sampleMovies(), 0, now); !equalIDs(got, 1, 2, 3) {
		t.Fatalf("zero cutoff got %v", ids(got))
	}
}

func TestSelectOldest(t *testing.T) {
	stats := ComputeStats(sampleMovies(), now)
	if threshold := OldestThreshold(stats, 0, now); !threshold.Equal(now) {
		t.Fatalf("zero cutoff threshold = %v want %v", threshold, now)
	}
	if threshold := OldestThreshold(stats, 1, now); !threshold.Equal(stats.Oldest) {
		t.Fatalf("full cutoff threshold = %v want %v", threshold, stats.Oldest)
	}
	if got := SelectOldest(sampleMovies(), 0.5, now); !equalIDs(got, 1, 7) {
		t.Fatalf("0.5 cutoff got %v", ids(got))
	}
	if got := SelectOldest(sampleMovies(), 1.0, now); !equalIDs(got, 1, 7) {
		t.Fatalf("1.0 cutoff got %v", ids(got))
	}
	if got := SelectOldest(sampleMovies(), 0, now); !equalIDs(got, 1, 2, 3, 7) {
		t.Fatalf("zero cutoff got %v", ids(got))
	}
}

func TestSelectOldestZeroCutoffMidDay(t *testing.T) {
	midday := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	first := time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)
	movies := []Movie{
		{ID: 1, IsAvailable: true, InCinemas: &first, Ratings: &Ratings{Votes: 10, Value: 6}},
		{ID: 2, IsAvailable: true, InCinemas: &recent, Ratings: &Ratings{Votes: 20, Value: 7}},
	}
	if got := SelectOldest(movies, 0, midday); !equalIDs(got, 1, 2) {
		t.Fatalf("zero cutoff got %v", ids(got))
	}
	stats := ComputeStats(movies, midday)
	want := first.Add(24 * time.Hour)
	if threshold := OldestThreshold(stats, 0.5, midday); !threshold.Equal(want) {
		t.Fatalf("half cutoff threshold = %v want %v", threshold, want)
	}
	if got := SelectOldest(movies, 0.5, midday); !equalIDs(got, 1) {
		t.Fatalf("half cutoff got %v", ids(got))
	}
}

func TestSelectUnmonitoredMissing(t *testing.T) {
	movies := []Movie{
		{ID: 1, Monitored: false},
		{ID: 2, Monitored: true},
		{ID: 3, HasFile: true},
		{ID: 4, Tags: []int{5}},
		{ID: 5, Tags: []int{6}},
	}
	purge, protected := SelectUnmonitoredMissing(movies, 5)
	if !equalIDs(purge, 1, 5) || !equalIDs(protected, 4) {
		t.Fatalf("purge=%v protected=%v", ids(purge), ids(protected))
	}
	purge, protected = SelectUnmonitoredMissing(movies, -1)
	if !equalIDs(purge, 1, 4, 5) || len(protected) != 0 {
		t.Fatalf("missing tag purge=%v protected=%v", ids(purge), ids(protected))
	}
}
