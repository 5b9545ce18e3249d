package radarr

import "time"

// Stats are the maxima and earliest release date over search-eligible
// movies that carry ratings.
type Stats struct {
	HighestRating float64
	HighestVotes  int
	Oldest        time.Time
}

// ComputeStats scans eligible movies with ratings. Maxima start at zero and
// the oldest date starts at now; missing values are skipped.
func ComputeStats(movies []Movie, now time.Time) Stats {
	stats := Stats{Oldest: now}
	for _, m := range movies {
		if !m.SearchEligible() || m.Ratings == nil {
			continue
		}
		if m.Ratings.Votes > stats.HighestVotes {
			stats.HighestVotes = m.Ratings.Votes
		}
		if m.Ratings.Value > stats.HighestRating {
			stats.HighestRating = m.Ratings.Value
		}
		if m.InCinemas != nil && m.InCinemas.Before(stats.Oldest) {
			stats.Oldest = *m.InCinemas
		}
	}
	return stats
}

// SelectByRating returns eligible movies rated at least cutoff times the
// highest rating.
func SelectByRating(movies []Movie, cutoff float64, now time.Time) []Movie {
	threshold := ComputeStats(movies, now).HighestRating * cutoff
	return selectEligible(movies, func(m Movie) bool {
		return m.Ratings != nil && m.Ratings.Value >= threshold
	})
}

// SelectByVotes returns eligible movies with at least cutoff times the
// highest vote count.
func SelectByVotes(movies []Movie, cutoff float64, now time.Time) []Movie {
	threshold := float64(ComputeStats(movies, now).HighestVotes) * cutoff
	return selectEligible(movies, func(m Movie) bool {
		return m.Ratings != nil && float64(m.Ratings.Votes) >= threshold
	})
}

// OldestThreshold returns the latest release date selected by SelectOldest:
// the oldest date plus (1-cutoff) of the whole days between it and now.
// A zero cutoff selects everything released up to now.
func OldestThreshold(stats Stats, cutoff float64, now time.Time) time.Time {
	if cutoff <= 0 {
		return now
	}
	days := int(now.Sub(stats.Oldest) / (24 * time.Hour))
	adjustment := time.Duration(float64(days) * (1 - cutoff) * float64(24*time.Hour))
	return stats.Oldest.Add(adjustment)
}

// SelectOldest returns eligible movies released no later than OldestThreshold.
func SelectOldest(movies []Movie, cutoff float64, now time.Time) []Movie {
	threshold := OldestThreshold(ComputeStats(movies, now), cutoff, now)
	return selectEligible(movies, func(m Movie) bool {
		return m.InCinemas != nil && !m.InCinemas.After(threshold)
	})
}

// SelectUnmonitoredMissing returns movies that are neither downloaded nor
// monitored, skipping those tagged with protectTag. Pass a negative id when
// the protect tag does not exist.
func SelectUnmonitoredMissing(movies []Movie, protectTag int) (purge, protected []Movie) {
	for _, m := range movies {
		if m.IsDownloaded() || m.Monitored {
			continue
		}
		if protectTag >= 0 && m.HasTag(protectTag) {
			protected = append(protected, m)
			continue
		}
		purge = append(purge, m)
	}
	return purge, protected
}

func selectEligible(movies []Movie, keep func(Movie) bool) []Movie {
	var out []Movie
	for _, m := range movies {
		if m.SearchEligible() && keep(m) {
			out = append(out, m)
		}
	}
	return out
}
