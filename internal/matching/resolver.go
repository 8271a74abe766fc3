package matching

import "sort"

// Match is one accepted result row with the display values of both records.
type Match struct {
	Name1         string  `json:"name1"`
	Post1         string  `json:"post1"`
	Organization1 string  `json:"org1"`
	OrgType1      string  `json:"org_type1"`
	Company1      string  `json:"company1"`
	Holding1      string  `json:"holding1"`
	Phone1        string  `json:"phone1"`
	Name2         string  `json:"name2"`
	Post2         string  `json:"post2"`
	Organization2 string  `json:"org2"`
	OrgType2      string  `json:"org_type2"`
	Company2      string  `json:"company2"`
	Holding2      string  `json:"holding2"`
	Phone2        string  `json:"phone2"`
	Score         float64 `json:"score"`
	ExactMatch    bool    `json:"exact_match"`

	pairKey [2]string
	indices CandidatePair
}

// Resolve turns scored pairs into the final result set: applies the
// acceptance threshold (or the exact-match override), collapses pairs with
// identical unordered display-name pairs into one row, renders display fields
// and sorts descending by score.
//
// Dedup is by name-string pair rather than index pair: two index pairs
// showing the same two names would be redundant rows for a reviewer.
func Resolve(pairs []ScoredPair, records []NormalizedRecord, s *Settings) []Match {
	seen := make(map[[2]string]bool)
	var matches []Match

	for _, p := range pairs {
		if !p.ExactMatch && p.Score < s.NameThreshold {
			continue
		}
		a := records[p.I]
		b := records[p.J]

		key := nameKey(a.DisplayName(), b.DisplayName())
		if seen[key] {
			continue
		}
		seen[key] = true

		matches = append(matches, Match{
			Name1:         a.DisplayName(),
			Post1:         a.Post,
			Organization1: displayOrganization(a),
			OrgType1:      a.OrganizationType,
			Company1:      a.CompanyTitle,
			Holding1:      a.HoldingTitle,
			Phone1:        a.MobileNumber,
			Name2:         b.DisplayName(),
			Post2:         b.Post,
			Organization2: displayOrganization(b),
			OrgType2:      b.OrganizationType,
			Company2:      b.CompanyTitle,
			Holding2:      b.HoldingTitle,
			Phone2:        b.MobileNumber,
			Score:         p.Score,
			ExactMatch:    p.ExactMatch,
			pairKey:       key,
			indices:       p.CandidatePair,
		})
	}

	// Descending score; equal scores ordered by ascending index pair so the
	// output is deterministic for a deterministic input ordering.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].indices.I != matches[j].indices.I {
			return matches[i].indices.I < matches[j].indices.I
		}
		return matches[i].indices.J < matches[j].indices.J
	})
	return matches
}

func nameKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// displayOrganization renders the organization title for output. A branch
// guest (IsHead explicitly false) shows its bank appended, "{org} - {bank}";
// display-only, never part of scoring.
func displayOrganization(r NormalizedRecord) string {
	if r.IsHead != nil && !*r.IsHead && r.BankTitle != "" {
		if r.Organization == "" {
			return r.BankTitle
		}
		return r.Organization + " - " + r.BankTitle
	}
	return r.Organization
}
