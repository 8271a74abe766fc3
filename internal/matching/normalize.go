// Package matching implements the guest deduplication engine: text
// normalization, field similarity, candidate blocking, weighted scoring and
// pair resolution.
package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CharNormalizer canonicalizes script-specific character variants. It is
// injected so deployments can swap the rules per locale; the engine only
// requires it to be total and idempotent.
type CharNormalizer func(string) string

// Arabic presentation variants that appear interchangeably with their Persian
// counterparts in guest data, plus Arabic-Indic and Extended Arabic-Indic
// digits mapped to ASCII.
var persianRunes = map[rune]rune{
	'ي': 'ی', // ي -> ی
	'ى': 'ی', // ى -> ی
	'ك': 'ک', // ك -> ک
	'ة': 'ه', // ة -> ه
	'أ': 'ا', // أ -> ا
	'إ': 'ا', // إ -> ا
	'ٱ': 'ا', // ٱ -> ا

	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
}

// Zero-width characters dropped during canonicalization. ZWNJ (U+200C) is
// deliberately kept: it is orthographic in Persian (e.g. حجت‌الاسلام).
var invisibleRunes = runes.Predicate(func(r rune) bool {
	switch r {
	case '\u200B', // zero-width space
		'\u200D', // zero-width joiner
		'\u200E', // left-to-right mark
		'\u200F', // right-to-left mark
		'\uFEFF': // byte order mark
		return true
	}
	return false
})

var persianTransform = transform.Chain(norm.NFC, runes.Remove(invisibleRunes))

// NormalizePersian is the default CharNormalizer: NFC composition, removal of
// invisible formatting runes, Arabic-variant folding and digit folding, then
// whitespace collapse.
func NormalizePersian(s string) string {
	if s == "" {
		return s
	}
	out, _, err := transform.String(persianTransform, s)
	if err != nil {
		out = s
	}
	out = strings.Map(func(r rune) rune {
		if mapped, ok := persianRunes[r]; ok {
			return mapped
		}
		// Arabic kashida used as a stretch character inside words.
		if r == 'ـ' {
			return -1
		}
		return r
	}, out)
	return collapseWhitespace(out)
}

func collapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}

// Normalizer canonicalizes raw name strings and strips honorific prefixes.
type Normalizer struct {
	chars    CharNormalizer
	stripper *PrefixStripper
}

// NewNormalizer builds a Normalizer; a nil chars falls back to
// NormalizePersian and a nil stripper to the default Persian vocabulary.
func NewNormalizer(chars CharNormalizer, stripper *PrefixStripper) *Normalizer {
	if chars == nil {
		chars = NormalizePersian
	}
	if stripper == nil {
		stripper = NewPrefixStripper()
	}
	return &Normalizer{chars: chars, stripper: stripper}
}

// Normalize canonicalizes raw and removes a leading honorific run.
// Total and idempotent.
func (n *Normalizer) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	return n.stripper.Strip(n.chars(raw))
}

// NormalizeText canonicalizes without prefix stripping, for fields where
// honorifics cannot occur (organizations, posts, bank titles).
func (n *Normalizer) NormalizeText(raw string) string {
	return n.chars(strings.TrimSpace(raw))
}
