package matching

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Substring-significance guard parameters: PartialRatio is only trusted when
// the shorter string covers at least half of the longer one, or when it does
// not beat TokenSortRatio by more than the margin. Prevents a short common
// fragment from scoring spuriously high against a long unrelated string.
const (
	partialGuardLengthRatio = 0.5
	partialGuardMargin      = 0.3
)

// Ratio is the character-level edit-distance similarity of a and b in [0,1].
// Symmetric; Ratio(a,a)=1 for non-empty a; two empty strings are defined as 0
// because empty fields carry no signal.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longer)
}

// TokenSortRatio compares a and b with word order made irrelevant: tokens are
// sorted and rejoined before Ratio. Handles "Last First" vs "First Last".
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// PartialRatio is the best-alignment substring similarity: the highest Ratio
// of the shorter string against any equally long window of the longer one.
func PartialRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == len(longer) {
		return Ratio(string(shorter), string(longer))
	}

	short := string(shorter)
	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := string(longer[i : i+len(shorter)])
		if r := Ratio(short, window); r > best {
			best = r
			if best == 1 {
				break
			}
		}
	}
	return best
}

// Similarity is the combined string similarity used for all text fields:
// max(TokenSortRatio, PartialRatio) with the substring-significance guard.
func Similarity(a, b string) float64 {
	tokenSort := TokenSortRatio(a, b)
	partial := PartialRatio(a, b)

	la := len([]rune(a))
	lb := len([]rune(b))
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer > 0 && float64(shorter)/float64(longer) < partialGuardLengthRatio &&
		partial > tokenSort+partialGuardMargin {
		return tokenSort
	}
	if partial > tokenSort {
		return partial
	}
	return tokenSort
}

// PhoneSimilarity compares mobile numbers on their last 11 digits. Both sides
// need at least 10 digits to contribute at all; an exact match scores 1.0 and
// near matches are rescaled so only ratios at or above 0.80 produce signal.
func PhoneSimilarity(a, b string) float64 {
	ca := cleanPhone(a)
	cb := cleanPhone(b)
	if len(ca) < 10 || len(cb) < 10 {
		return 0
	}
	if ca == cb {
		return 1
	}
	r := Ratio(ca, cb)
	if r < 0.80 {
		return 0
	}
	return (r - 0.80) * 0.5
}

func cleanPhone(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if len(cleaned) > 11 {
		cleaned = cleaned[len(cleaned)-11:]
	}
	return cleaned
}
