package service

import (
	"context"
	"fmt"
	"math"

	"guestmatch/internal/logger"
	"guestmatch/internal/matching"

	"github.com/google/uuid"
)

type guestLister interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]matching.GuestRecord, error)
}

// Config seeds the server-side defaults for matching runs. Zero values fall
// back to the engine defaults; per-request options override both.
type Config struct {
	NameThreshold float64
	MinFrequency  int
	Workers       int
}

// MatchService runs duplicate-guest detection for an event.
type MatchService struct {
	guestRepo guestLister
	cfg       Config
}

// NewMatchService creates a new match service.
func NewMatchService(guestRepo guestLister, cfg Config) *MatchService {
	return &MatchService{guestRepo: guestRepo, cfg: cfg}
}

// baseSettings is the engine defaults with the server-side configuration
// applied on top.
func (s *MatchService) baseSettings() matching.Settings {
	settings := matching.DefaultSettings()
	if s.cfg.NameThreshold > 0 {
		settings.NameThreshold = s.cfg.NameThreshold
	}
	if s.cfg.MinFrequency > 0 {
		settings.MinFrequency = s.cfg.MinFrequency
	}
	return settings
}

// MatchOptions carries per-request overrides for the matching settings.
// Nil fields keep the defaults.
type MatchOptions struct {
	NameThreshold       *float64 `json:"name_threshold,omitempty"`
	LastNameWeight      *float64 `json:"last_name_weight,omitempty"`
	FirstNameWeight     *float64 `json:"first_name_weight,omitempty"`
	OrgWeight           *float64 `json:"org_weight,omitempty"`
	PostWeight          *float64 `json:"post_weight,omitempty"`
	MobileWeight        *float64 `json:"mobile_weight,omitempty"`
	StopPenalty         *float64 `json:"stop_penalty,omitempty"`
	MinFrequency        *int     `json:"min_frequency,omitempty"`
	UseBankBonus        *bool    `json:"use_bank_bonus,omitempty"`
	BankBonusAmount     *float64 `json:"bank_bonus_amount,omitempty"`
	UseSharedLastBonus  *bool    `json:"use_shared_last_name_bonus,omitempty"`
	OrgThresholdForPost *float64 `json:"org_threshold_for_post,omitempty"`
	SharedLastNameBonus *float64 `json:"shared_last_name_bonus,omitempty"`
	ExactMatchFloor     *float64 `json:"exact_match_floor,omitempty"`
	KeepWhenEmptied     *bool    `json:"keep_when_emptied,omitempty"`
	StopFirstNames      []string `json:"stop_first_names,omitempty"`
}

// MatchRow is one similar-name pair in the service response.
type MatchRow struct {
	Name1         string  `json:"name1"`
	Post1         string  `json:"post1"`
	Organization1 string  `json:"organization1"`
	OrgType1      string  `json:"org_type1"`
	Company1      string  `json:"company1"`
	Holding1      string  `json:"holding1"`
	Phone1        string  `json:"phone1"`
	Name2         string  `json:"name2"`
	Post2         string  `json:"post2"`
	Organization2 string  `json:"organization2"`
	OrgType2      string  `json:"org_type2"`
	Company2      string  `json:"company2"`
	Holding2      string  `json:"holding2"`
	Phone2        string  `json:"phone2"`
	Score         float64 `json:"score"`
	Percentage    float64 `json:"percentage"`
	ExactMatch    bool    `json:"exact_match"`
}

// MatchResult is the full outcome of a matching run.
type MatchResult struct {
	EventID        uuid.UUID  `json:"event_id"`
	TotalGuests    int        `json:"total_guests"`
	CandidatePairs int        `json:"candidate_pairs"`
	TotalPairs     int        `json:"total_pairs"`
	StopFirstNames []string   `json:"stop_first_names"`
	Rows           []MatchRow `json:"rows"`
}

// FindSimilarNames loads the event's guests and runs the matching engine
// over them with the given overrides applied to the default settings.
func (s *MatchService) FindSimilarNames(ctx context.Context, eventID uuid.UUID, opts *MatchOptions) (*MatchResult, error) {
	records, err := s.guestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		logger.Error().Err(err).Str("event_id", eventID.String()).Msg("failed to load guests")
		return nil, fmt.Errorf("failed to load guests: %w", err)
	}

	settings := s.baseSettings()
	applyOptions(&settings, opts)

	engine, err := matching.NewEngine(settings, matching.WithWorkers(s.cfg.Workers))
	if err != nil {
		return nil, err
	}

	result, err := engine.FindSimilar(records)
	if err != nil {
		return nil, fmt.Errorf("matching run failed: %w", err)
	}

	rows := make([]MatchRow, 0, len(result.Matches))
	for _, m := range result.Matches {
		rows = append(rows, toMatchRow(m))
	}

	logger.Info().
		Str("event_id", eventID.String()).
		Int("guests", result.Report.Records).
		Int("candidate_pairs", result.Report.CandidatePairs).
		Int("matches", len(rows)).
		Msg("similar name search completed")

	return &MatchResult{
		EventID:        eventID,
		TotalGuests:    result.Report.Records,
		CandidatePairs: result.Report.CandidatePairs,
		TotalPairs:     len(rows),
		StopFirstNames: result.Report.StopFirstNames,
		Rows:           rows,
	}, nil
}

// MatchRecords runs the engine directly over caller-supplied records, used
// for file-based runs that bypass the database.
func (s *MatchService) MatchRecords(records []matching.GuestRecord, opts *MatchOptions) (*MatchResult, error) {
	settings := s.baseSettings()
	applyOptions(&settings, opts)

	engine, err := matching.NewEngine(settings, matching.WithWorkers(s.cfg.Workers))
	if err != nil {
		return nil, err
	}

	result, err := engine.FindSimilar(records)
	if err != nil {
		return nil, fmt.Errorf("matching run failed: %w", err)
	}

	rows := make([]MatchRow, 0, len(result.Matches))
	for _, m := range result.Matches {
		rows = append(rows, toMatchRow(m))
	}

	return &MatchResult{
		TotalGuests:    result.Report.Records,
		CandidatePairs: result.Report.CandidatePairs,
		TotalPairs:     len(rows),
		StopFirstNames: result.Report.StopFirstNames,
		Rows:           rows,
	}, nil
}

func applyOptions(s *matching.Settings, opts *MatchOptions) {
	if opts == nil {
		return
	}
	if opts.NameThreshold != nil {
		s.NameThreshold = *opts.NameThreshold
	}
	if opts.LastNameWeight != nil {
		s.LastNameWeight = *opts.LastNameWeight
	}
	if opts.FirstNameWeight != nil {
		s.FirstNameWeight = *opts.FirstNameWeight
	}
	if opts.OrgWeight != nil {
		s.OrgWeight = *opts.OrgWeight
	}
	if opts.PostWeight != nil {
		s.PostWeight = *opts.PostWeight
	}
	if opts.MobileWeight != nil {
		s.MobileWeight = *opts.MobileWeight
	}
	if opts.StopPenalty != nil {
		s.StopPenalty = *opts.StopPenalty
	}
	if opts.MinFrequency != nil {
		s.MinFrequency = *opts.MinFrequency
	}
	if opts.UseBankBonus != nil {
		s.UseBankBonus = *opts.UseBankBonus
	}
	if opts.BankBonusAmount != nil {
		s.BankBonusAmount = *opts.BankBonusAmount
	}
	if opts.UseSharedLastBonus != nil {
		s.UseSharedLastNameBonus = *opts.UseSharedLastBonus
	}
	if opts.OrgThresholdForPost != nil {
		s.OrgThresholdForPost = *opts.OrgThresholdForPost
	}
	if opts.SharedLastNameBonus != nil {
		s.SharedLastNameBonus = *opts.SharedLastNameBonus
	}
	if opts.ExactMatchFloor != nil {
		s.ExactMatchFloor = *opts.ExactMatchFloor
	}
	if opts.KeepWhenEmptied != nil {
		s.KeepWhenEmptied = *opts.KeepWhenEmptied
	}
	if opts.StopFirstNames != nil {
		stop := make(map[string]bool, len(opts.StopFirstNames))
		for _, name := range opts.StopFirstNames {
			stop[name] = true
		}
		s.StopFirstNames = stop
	}
}

func toMatchRow(m matching.Match) MatchRow {
	return MatchRow{
		Name1:         m.Name1,
		Post1:         m.Post1,
		Organization1: m.Organization1,
		OrgType1:      m.OrgType1,
		Company1:      m.Company1,
		Holding1:      m.Holding1,
		Phone1:        m.Phone1,
		Name2:         m.Name2,
		Post2:         m.Post2,
		Organization2: m.Organization2,
		OrgType2:      m.OrgType2,
		Company2:      m.Company2,
		Holding2:      m.Holding2,
		Phone2:        m.Phone2,
		Score:         m.Score,
		Percentage:    math.Round(m.Score*1000) / 10,
		ExactMatch:    m.ExactMatch,
	}
}
