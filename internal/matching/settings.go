package matching

import (
	"fmt"
	"strings"
)

// Default settings, following the production tuning of the matching run.
const (
	DefaultNameThreshold       = 0.75
	DefaultLastNameWeight      = 0.40
	DefaultFirstNameWeight     = 0.20
	DefaultOrgWeight           = 0.20
	DefaultPostWeight          = 0.15
	DefaultMobileWeight        = 0.05
	DefaultStopPenalty         = 0.75
	DefaultMinFrequency        = 3
	DefaultBankBonusAmount     = 0.05
	DefaultOrgThresholdForPost = 0.70
	DefaultSharedLastNameBonus = 0.05
	DefaultExactMatchFloor     = 0.80
	DefaultBlockingSwitchSize  = 20
)

// Settings configures one matching run. Weights are not required to sum to 1;
// the combined score is a heuristic, not a probability. A Settings value is
// immutable for the lifetime of a run except for the one-time stop-name
// derivation.
type Settings struct {
	NameThreshold float64

	LastNameWeight  float64
	FirstNameWeight float64
	OrgWeight       float64
	PostWeight      float64
	MobileWeight    float64

	// StopFirstNames holds first names so frequent in the current dataset
	// that their similarity carries little signal. Derived once per run via
	// ExtractStopFirstNames, read-only afterwards.
	StopFirstNames map[string]bool
	StopPenalty    float64
	MinFrequency   int

	UseBankBonus    bool
	BankBonusAmount float64

	// OrgThresholdForPost gates post similarity: a job-title match only
	// counts once organization identity is plausible.
	OrgThresholdForPost float64

	UseSharedLastNameBonus bool
	SharedLastNameBonus    float64

	// ExactMatchFloor is the minimum score forced onto pairs whose normalized
	// names are identical, so exact duplicates always surface.
	ExactMatchFloor float64

	// BlockingSwitchSize is the dataset size above which candidate generation
	// switches from exhaustive pairs to the blocking index.
	BlockingSwitchSize int

	// KeepWhenEmptied controls names consisting entirely of honorific prefixes:
	// true keeps the original input, false empties the name. Ignored when the
	// engine is built with a custom normalizer.
	KeepWhenEmptied bool
}

// DefaultSettings returns the production defaults.
func DefaultSettings() Settings {
	return Settings{
		NameThreshold:          DefaultNameThreshold,
		LastNameWeight:         DefaultLastNameWeight,
		FirstNameWeight:        DefaultFirstNameWeight,
		OrgWeight:              DefaultOrgWeight,
		PostWeight:             DefaultPostWeight,
		MobileWeight:           DefaultMobileWeight,
		StopPenalty:            DefaultStopPenalty,
		MinFrequency:           DefaultMinFrequency,
		UseBankBonus:           true,
		BankBonusAmount:        DefaultBankBonusAmount,
		OrgThresholdForPost:    DefaultOrgThresholdForPost,
		UseSharedLastNameBonus: true,
		SharedLastNameBonus:    DefaultSharedLastNameBonus,
		ExactMatchFloor:        DefaultExactMatchFloor,
		BlockingSwitchSize:     DefaultBlockingSwitchSize,
		KeepWhenEmptied:        true,
	}
}

// SettingsError reports an invalid settings field.
type SettingsError struct {
	Field   string
	Message string
}

func (e SettingsError) Error() string {
	return fmt.Sprintf("settings validation failed for %s: %s", e.Field, e.Message)
}

// SettingsErrors aggregates all invalid fields of one Settings value.
type SettingsErrors []SettingsError

func (e SettingsErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	sb.WriteString("settings validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validate rejects invalid settings at construction time. Out-of-range values
// are errors, never silently clamped.
func (s Settings) Validate() error {
	var errs SettingsErrors

	unit := func(field string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, SettingsError{Field: field, Message: fmt.Sprintf("must be in [0,1], got %g", v)})
		}
	}
	nonNegative := func(field string, v float64) {
		if v < 0 {
			errs = append(errs, SettingsError{Field: field, Message: fmt.Sprintf("must not be negative, got %g", v)})
		}
	}

	unit("NameThreshold", s.NameThreshold)
	unit("StopPenalty", s.StopPenalty)
	unit("OrgThresholdForPost", s.OrgThresholdForPost)
	unit("ExactMatchFloor", s.ExactMatchFloor)

	nonNegative("LastNameWeight", s.LastNameWeight)
	nonNegative("FirstNameWeight", s.FirstNameWeight)
	nonNegative("OrgWeight", s.OrgWeight)
	nonNegative("PostWeight", s.PostWeight)
	nonNegative("MobileWeight", s.MobileWeight)
	nonNegative("BankBonusAmount", s.BankBonusAmount)
	nonNegative("SharedLastNameBonus", s.SharedLastNameBonus)

	if s.MinFrequency < 1 {
		errs = append(errs, SettingsError{Field: "MinFrequency", Message: fmt.Sprintf("must be at least 1, got %d", s.MinFrequency)})
	}
	if s.BlockingSwitchSize < 2 {
		errs = append(errs, SettingsError{Field: "BlockingSwitchSize", Message: fmt.Sprintf("must be at least 2, got %d", s.BlockingSwitchSize)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ExtractStopFirstNames derives the stop-name set from the normalized
// records: any first name occurring at least minFrequency times. An empty or
// degenerate dataset yields an empty set, never an error.
func ExtractStopFirstNames(records []NormalizedRecord, minFrequency int) map[string]bool {
	if minFrequency < 1 {
		minFrequency = 1
	}
	freq := make(map[string]int)
	for _, rec := range records {
		name := strings.TrimSpace(rec.FirstName)
		if name == "" {
			continue
		}
		freq[name]++
	}
	stop := make(map[string]bool)
	for name, count := range freq {
		if count >= minFrequency {
			stop[name] = true
		}
	}
	return stop
}
