package matching

import (
	"sort"
	"strings"
	"unicode"
)

// Honorific vocabulary for Persian guest names. This is a closed configuration
// asset: the stripper never derives prefixes from data at runtime.
//
// Multi-word forms are matched before single-word forms so that
// "جناب آقای دکتر" is removed as one unit instead of leaving "دکتر" behind.
var (
	defaultMultiWordPrefixes = []string{
		"جناب آقای دکتر",
		"سرکار خانم دکتر",
		"جناب آقای مهندس",
		"سرکار خانم مهندس",
		"جناب آقای استاد",
		"سرکار خانم استاد",
		"جناب آقای پروفسور",
		"سرکار خانم پروفسور",
		"آقای دکتر",
		"خانم دکتر",
		"آقای مهندس",
		"خانم مهندس",
		"جناب آقای",
		"سرکار خانم",
		"حاج آقا",
		"حاج خانم",
		"آقای استاد",
		"خانم استاد",
		"آقای پروفسور",
		"خانم پروفسور",
	}

	// Fused variants written without the separating space.
	defaultFusedPrefixes = []string{
		"سرکارخانم",
		"جنابآقای",
		"حاجآقا",
		"حاجخانم",
	}

	defaultSinglePrefixes = []string{
		"آقا",
		"اقای",
		"آقای",
		"خانم",
		"دکتر",
		"مهندس",
		"استاد",
		"حاج",
		"حاجی",
		"کربلایی",
		"جناب",
		"سرکار",
		"پروفسور",
		"سید",
		"سیده",
		"بانو",
		"میر",
		"ملا",
		"حجت‌الاسلام",
		"آیت‌الله",
		"خان",
		"مشهدی",
	}
)

// PrefixStripper removes leading honorific prefixes from a name.
// The zero value is not usable; construct with NewPrefixStripper.
type PrefixStripper struct {
	multiWord []string
	fused     []string
	single    map[string]bool
	singleLen []string

	// KeepWhenEmptied controls the edge case of a name consisting entirely of
	// prefix words: true returns the input unchanged, false returns "".
	KeepWhenEmptied bool
}

// NewPrefixStripper builds a stripper over the default Persian vocabulary.
func NewPrefixStripper() *PrefixStripper {
	return NewPrefixStripperWithVocabulary(defaultMultiWordPrefixes, defaultFusedPrefixes, defaultSinglePrefixes)
}

// NewPrefixStripperWithVocabulary builds a stripper over a custom vocabulary,
// for deployments targeting a different locale.
func NewPrefixStripperWithVocabulary(multiWord, fused, single []string) *PrefixStripper {
	s := &PrefixStripper{
		multiWord:       append([]string(nil), multiWord...),
		fused:           append([]string(nil), fused...),
		single:          make(map[string]bool, len(single)),
		singleLen:       append([]string(nil), single...),
		KeepWhenEmptied: true,
	}
	// Longest-first so a longer prefix is never shadowed by its own head.
	sort.Slice(s.multiWord, func(i, j int) bool { return len(s.multiWord[i]) > len(s.multiWord[j]) })
	sort.Slice(s.fused, func(i, j int) bool { return len(s.fused[i]) > len(s.fused[j]) })
	sort.Slice(s.singleLen, func(i, j int) bool { return len(s.singleLen[i]) > len(s.singleLen[j]) })
	for _, p := range single {
		s.single[p] = true
	}
	return s
}

// Strip removes the leading honorific run from name and trims the remainder.
// Total and idempotent; never fails.
func (s *PrefixStripper) Strip(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}

	// Iterate to a fixpoint: stripping a glued prefix can expose another
	// prefix word, and idempotence of the whole normalizer depends on the
	// result being stable under re-stripping.
	stripped := name
	for {
		next := s.stripOnce(stripped)
		if next == "" {
			if s.KeepWhenEmptied {
				return name
			}
			return ""
		}
		if next == stripped {
			return next
		}
		stripped = next
	}
}

func (s *PrefixStripper) stripOnce(name string) string {
	// Multi-word prefixes, repeated so stacked forms all come off.
	for changed := true; changed; {
		changed = false
		for _, prefix := range s.multiWord {
			if name == prefix {
				return ""
			}
			if strings.HasPrefix(name, prefix+" ") {
				name = strings.TrimLeft(name[len(prefix):], " ")
				changed = true
				break
			}
		}
	}

	// Fused no-space forms, only when a letter follows.
	for changed := true; changed; {
		changed = false
		for _, prefix := range s.fused {
			if strings.HasPrefix(name, prefix) {
				rest := name[len(prefix):]
				if startsWithLetter(rest) {
					name = rest
					changed = true
					break
				}
			}
		}
	}

	// Leading single-word prefix tokens.
	words := strings.Fields(name)
	i := 0
	for i < len(words) && s.single[words[i]] {
		i++
	}
	if i >= len(words) {
		return ""
	}
	result := strings.Join(words[i:], " ")

	// A single prefix glued onto the name without a space ("دکترنازنین").
	for _, prefix := range s.singleLen {
		if strings.HasPrefix(result, prefix) {
			rest := result[len(prefix):]
			if startsWithLetter(rest) {
				result = rest
				break
			}
		}
	}

	return strings.TrimSpace(result)
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}
