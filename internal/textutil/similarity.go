package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// ClosestTitle returns the candidate most similar to title and its score.
// Candidates scoring below minScore are ignored; ok is false when none qualify.
func ClosestTitle(title string, candidates []string, minScore float64) (best string, score float64, ok bool) {
	target := NewFingerprint(title)
	if target == nil {
		return "", 0, false
	}
	for _, candidate := range candidates {
		s := CosineSimilarity(target, NewFingerprint(candidate))
		if s < minScore || s <= score {
			continue
		}
		best, score, ok = candidate, s, true
	}
	return best, score, ok
}
