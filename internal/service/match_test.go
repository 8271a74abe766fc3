package service

import (
	"context"
	"errors"
	"testing"

	"guestmatch/internal/matching"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuestRepo struct {
	records     []matching.GuestRecord
	err         error
	lastEventID uuid.UUID
}

func (f *fakeGuestRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]matching.GuestRecord, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestMatchServiceFindSimilarNames_RepoError(t *testing.T) {
	repo := &fakeGuestRepo{err: errors.New("connection refused")}
	svc := NewMatchService(repo, Config{Workers: 1})

	_, err := svc.FindSimilarNames(context.Background(), uuid.New(), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load guests")
}

func TestMatchServiceFindSimilarNames_EmptyEvent(t *testing.T) {
	repo := &fakeGuestRepo{}
	svc := NewMatchService(repo, Config{Workers: 1})
	eventID := uuid.New()

	result, err := svc.FindSimilarNames(context.Background(), eventID, nil)
	require.NoError(t, err)
	assert.Equal(t, eventID, repo.lastEventID)
	assert.Equal(t, eventID, result.EventID)
	assert.Equal(t, 0, result.TotalGuests)
	assert.Equal(t, 0, result.TotalPairs)
	assert.Empty(t, result.Rows)
}

func TestMatchServiceFindSimilarNames_ExactDuplicates(t *testing.T) {
	repo := &fakeGuestRepo{
		records: []matching.GuestRecord{
			{ID: "1", FirstName: "محمد", LastName: "احمدی", Organization: "شرکت الف"},
			{ID: "2", FirstName: "محمد", LastName: "احمدی", Organization: "شرکت الف"},
			{ID: "3", FirstName: "زهرا", LastName: "کاظمی", Organization: "شرکت ب"},
		},
	}
	svc := NewMatchService(repo, Config{Workers: 1})

	result, err := svc.FindSimilarNames(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalGuests)
	require.Equal(t, 1, result.TotalPairs)

	row := result.Rows[0]
	assert.Equal(t, "محمد احمدی", row.Name1)
	assert.Equal(t, "محمد احمدی", row.Name2)
	assert.True(t, row.ExactMatch)
	assert.InDelta(t, row.Score*100, row.Percentage, 0.01)
}

func TestMatchServiceFindSimilarNames_ThresholdOverride(t *testing.T) {
	// Same last name, different first names: visible only at a low threshold.
	repo := &fakeGuestRepo{
		records: []matching.GuestRecord{
			{ID: "1", FirstName: "محمد", LastName: "احمدی"},
			{ID: "2", FirstName: "زهرا", LastName: "احمدی"},
		},
	}
	svc := NewMatchService(repo, Config{Workers: 1})

	strict, err := svc.FindSimilarNames(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, strict.TotalPairs)

	low := 0.40
	loose, err := svc.FindSimilarNames(context.Background(), uuid.New(), &MatchOptions{NameThreshold: &low})
	require.NoError(t, err)
	assert.Equal(t, 1, loose.TotalPairs)
}

func TestMatchServiceFindSimilarNames_InvalidOverride(t *testing.T) {
	repo := &fakeGuestRepo{}
	svc := NewMatchService(repo, Config{Workers: 1})

	bad := 1.5
	_, err := svc.FindSimilarNames(context.Background(), uuid.New(), &MatchOptions{NameThreshold: &bad})
	assert.Error(t, err)

	var serrs matching.SettingsErrors
	assert.ErrorAs(t, err, &serrs)
}

func TestMatchServiceFindSimilarNames_ExplicitStopNames(t *testing.T) {
	repo := &fakeGuestRepo{
		records: []matching.GuestRecord{
			{ID: "1", FirstName: "محمد", LastName: "احمدی"},
			{ID: "2", FirstName: "محمد", LastName: "رضایی"},
		},
	}
	svc := NewMatchService(repo, Config{Workers: 1})

	result, err := svc.FindSimilarNames(context.Background(), uuid.New(), &MatchOptions{
		StopFirstNames: []string{"محمد"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"محمد"}, result.StopFirstNames)
}

func TestMatchServiceServerDefaultsApplied(t *testing.T) {
	// Same last name, different first names: invisible at the engine default
	// threshold, visible when the server-side default lowers it.
	repo := &fakeGuestRepo{
		records: []matching.GuestRecord{
			{ID: "1", FirstName: "محمد", LastName: "احمدی"},
			{ID: "2", FirstName: "زهرا", LastName: "احمدی"},
		},
	}

	strict := NewMatchService(repo, Config{Workers: 1})
	result, err := strict.FindSimilarNames(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalPairs)

	loose := NewMatchService(repo, Config{NameThreshold: 0.40, Workers: 1})
	result, err = loose.FindSimilarNames(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPairs)

	// A per-request override still beats the server default.
	high := 0.99
	result, err = loose.FindSimilarNames(context.Background(), uuid.New(), &MatchOptions{NameThreshold: &high})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalPairs)
}

func TestMatchServiceServerDefaultMinFrequency(t *testing.T) {
	// MinFrequency 2 turns a twice-repeated first name into a stop name.
	repo := &fakeGuestRepo{
		records: []matching.GuestRecord{
			{ID: "1", FirstName: "محمد", LastName: "احمدی"},
			{ID: "2", FirstName: "محمد", LastName: "رضایی"},
		},
	}

	svc := NewMatchService(repo, Config{MinFrequency: 2, Workers: 1})
	result, err := svc.FindSimilarNames(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"محمد"}, result.StopFirstNames)
}

func TestMatchServiceMatchRecords(t *testing.T) {
	svc := NewMatchService(&fakeGuestRepo{}, Config{Workers: 1})

	records := []matching.GuestRecord{
		{ID: "1", FirstName: "علی", LastName: "موسوی"},
		{ID: "2", FirstName: "علی", LastName: "موسوی"},
	}

	result, err := svc.MatchRecords(records, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalGuests)
	assert.Equal(t, 1, result.CandidatePairs)
	assert.Equal(t, 1, result.TotalPairs)
	assert.True(t, result.Rows[0].ExactMatch)
}
