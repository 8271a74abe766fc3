package matching

import "sort"

// Blocking parameters for the large-dataset path. The pre-filter keeps pairs
// whose last names align at 50% or better and caps candidates per anchor to
// bound cost on pathological blocks (many guests sharing one family name).
const (
	blockingGramSize       = 3
	blockingPrefilterFloor = 0.5
	blockingCandidateCap   = 100
)

// CandidatePair is an ordered pair of record indices (I < J) produced by
// blocking, not yet scored.
type CandidatePair struct {
	I int
	J int
}

// GeneratePairs produces the candidate pairs to score. Below switchSize every
// unordered pair is emitted exactly once; above it a last-name n-gram index
// plus a cheap similarity pre-filter bounds the comparison count.
//
// The pre-filter trades recall for speed: a true match whose last names are
// dissimilar can be dropped. This is an accepted limitation, not a bug.
func GeneratePairs(records []NormalizedRecord, switchSize int) []CandidatePair {
	if len(records) <= switchSize {
		return allPairs(len(records))
	}
	return blockedPairs(records)
}

func allPairs(n int) []CandidatePair {
	if n < 2 {
		return nil
	}
	pairs := make([]CandidatePair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, CandidatePair{I: i, J: j})
		}
	}
	return pairs
}

// blockedPairs indexes records by the leading and trailing trigrams of the
// last name, then pre-filters each anchor's bucket neighbours by last-name
// PartialRatio.
func blockedPairs(records []NormalizedRecord) []CandidatePair {
	index := make(map[string][]int)
	for i, rec := range records {
		for _, key := range blockingKeys(rec.LastName) {
			index[key] = append(index[key], i)
		}
	}

	type scored struct {
		j     int
		score float64
	}

	var pairs []CandidatePair
	seen := make(map[CandidatePair]bool)

	for i, rec := range records {
		neighbourSet := make(map[int]bool)
		for _, key := range blockingKeys(rec.LastName) {
			for _, j := range index[key] {
				if j != i {
					neighbourSet[j] = true
				}
			}
		}

		candidates := make([]scored, 0, len(neighbourSet))
		for j := range neighbourSet {
			s := PartialRatio(rec.LastName, records[j].LastName)
			if s >= blockingPrefilterFloor {
				candidates = append(candidates, scored{j: j, score: s})
			}
		}
		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].score != candidates[b].score {
				return candidates[a].score > candidates[b].score
			}
			return candidates[a].j < candidates[b].j
		})
		if len(candidates) > blockingCandidateCap {
			candidates = candidates[:blockingCandidateCap]
		}

		for _, c := range candidates {
			pair := CandidatePair{I: i, J: c.j}
			if pair.I > pair.J {
				pair.I, pair.J = pair.J, pair.I
			}
			if !seen[pair] {
				seen[pair] = true
				pairs = append(pairs, pair)
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].I != pairs[b].I {
			return pairs[a].I < pairs[b].I
		}
		return pairs[a].J < pairs[b].J
	})
	return pairs
}

// blockingKeys returns the leading and trailing trigrams of the last name, or
// the whole name when it is shorter than one trigram.
func blockingKeys(lastName string) []string {
	r := []rune(lastName)
	if len(r) == 0 {
		return nil
	}
	if len(r) <= blockingGramSize {
		return []string{string(r)}
	}
	lead := string(r[:blockingGramSize])
	trail := string(r[len(r)-blockingGramSize:])
	if lead == trail {
		return []string{lead}
	}
	return []string{lead, trail}
}
