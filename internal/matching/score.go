package matching

import (
	"math"
	"strings"
)

// ScoredPair is a candidate pair with its combined score. Immutable once
// emitted.
type ScoredPair struct {
	CandidatePair
	Score float64

	// ExactMatch records that both normalized names were identical, which
	// forces the pair through the threshold regardless of score.
	ExactMatch bool
}

// ScorePair combines per-field similarities into one weighted score for the
// pair (a, b). Symmetric in its record arguments.
//
// Field rules:
//   - first-name similarity is multiplied by StopPenalty when either side's
//     first name is a stop name;
//   - organization similarity requires both sides non-empty;
//   - post similarity is gated on organization similarity reaching
//     OrgThresholdForPost, since a job-title match is only evidence once
//     organization identity is plausible;
//   - the bank bonus substitutes for last-name weight rather than adding to
//     it;
//   - identical normalized names force the score up to ExactMatchFloor.
func ScorePair(a, b NormalizedRecord, s *Settings) ScoredPair {
	firstSim := Similarity(a.FirstName, b.FirstName)
	if s.StopFirstNames[a.FirstName] || s.StopFirstNames[b.FirstName] {
		firstSim *= s.StopPenalty
	}

	lastSim := Similarity(a.LastName, b.LastName)

	orgSim := 0.0
	if a.Organization != "" && b.Organization != "" {
		orgSim = Similarity(a.Organization, b.Organization)
	}

	postSim := 0.0
	if orgSim >= s.OrgThresholdForPost && a.Post != "" && b.Post != "" {
		postSim = Similarity(a.Post, b.Post)
	}

	mobileSim := PhoneSimilarity(a.MobileNumber, b.MobileNumber)

	lastWeight := s.LastNameWeight
	bankBonus := 0.0
	if s.UseBankBonus && a.BankTitle != "" && b.BankTitle != "" {
		if Ratio(a.BankTitle, b.BankTitle) >= 0.8 {
			bankBonus = s.BankBonusAmount
			lastWeight -= s.BankBonusAmount
		}
	}

	sharedLastBonus := 0.0
	if s.UseSharedLastNameBonus && sharesLastName(a.LastName, b.LastName) {
		sharedLastBonus = s.SharedLastNameBonus
	}

	score := lastWeight*lastSim +
		s.FirstNameWeight*firstSim +
		s.OrgWeight*orgSim +
		s.PostWeight*postSim +
		s.MobileWeight*mobileSim +
		bankBonus +
		sharedLastBonus

	score = math.Round(score*1000) / 1000

	// Records with one empty name component are kept, so identical names count
	// as exact even when only one component is present.
	exact := a.FirstName == b.FirstName && a.LastName == b.LastName &&
		(a.FirstName != "" || a.LastName != "")
	if exact && score < s.ExactMatchFloor {
		score = s.ExactMatchFloor
	}

	return ScoredPair{Score: score, ExactMatch: exact}
}

// sharesLastName reports whether two non-empty last names share a token or
// contain each other, with a partial-ratio floor to reject accidental token
// overlap between otherwise dissimilar names.
func sharesLastName(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if PartialRatio(a, b) < 0.8 {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	tokensA := strings.Fields(a)
	setB := make(map[string]bool)
	for _, t := range strings.Fields(b) {
		setB[t] = true
	}
	for _, t := range tokensA {
		if setB[t] {
			return true
		}
	}
	return false
}
