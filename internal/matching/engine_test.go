package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRejectsInvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.LastNameWeight = -1

	_, err := NewEngine(s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LastNameWeight")
}

func TestEngineExactDuplicates(t *testing.T) {
	engine, err := NewEngine(DefaultSettings())
	require.NoError(t, err)

	records := []GuestRecord{
		{FirstName: "محمد", LastName: "احمدی", Organization: "شرکت الف"},
		{FirstName: "محمد", LastName: "احمدی", Organization: "شرکت الف"},
	}

	result, err := engine.FindSimilar(records)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	m := result.Matches[0]
	assert.Equal(t, "محمد احمدی", m.Name1)
	assert.Equal(t, "محمد احمدی", m.Name2)
	assert.True(t, m.ExactMatch)
	assert.GreaterOrEqual(t, m.Score, DefaultNameThreshold)
}

func TestEngineExactDuplicatesWithEmptyFirstName(t *testing.T) {
	engine, err := NewEngine(DefaultSettings())
	require.NoError(t, err)

	records := []GuestRecord{
		{LastName: "احمدی"},
		{LastName: "احمدی"},
	}

	result, err := engine.FindSimilar(records)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	m := result.Matches[0]
	assert.Equal(t, "احمدی", m.Name1)
	assert.True(t, m.ExactMatch)
	assert.GreaterOrEqual(t, m.Score, DefaultExactMatchFloor)
}

func TestEngineStripsHonorificsBeforeMatching(t *testing.T) {
	engine, err := NewEngine(DefaultSettings())
	require.NoError(t, err)

	records := []GuestRecord{
		{FirstName: "آقای دکتر محمد", LastName: "احمدی", Organization: "شرکت الف"},
		{FirstName: "محمد", LastName: "احمدی", Organization: "شرکت الف"},
	}

	result, err := engine.FindSimilar(records)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.True(t, result.Matches[0].ExactMatch, "honorific must not defeat the exact match")
	assert.Equal(t, "محمد احمدی", result.Matches[0].Name1)
}

func TestEngineUnrelatedRecordsProduceNothing(t *testing.T) {
	engine, err := NewEngine(DefaultSettings())
	require.NoError(t, err)

	records := []GuestRecord{
		{FirstName: "محمد", LastName: "احمدی"},
		{FirstName: "زهرا", LastName: "کاظمی"},
	}

	result, err := engine.FindSimilar(records)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 1, result.Report.CandidatePairs)
}

func TestEngineStopNamesDerivedFromDataset(t *testing.T) {
	s := DefaultSettings()
	s.MinFrequency = 3
	engine, err := NewEngine(s)
	require.NoError(t, err)

	records := []GuestRecord{
		{FirstName: "علی", LastName: "احمدی"},
		{FirstName: "علی", LastName: "رضایی"},
		{FirstName: "علی", LastName: "کاظمی"},
		{FirstName: "مریم", LastName: "تهرانی"},
	}

	result, err := engine.FindSimilar(records)
	require.NoError(t, err)
	assert.Equal(t, []string{"علی"}, result.Report.StopFirstNames)
}

func TestEngineReportCounts(t *testing.T) {
	engine, err := NewEngine(DefaultSettings())
	require.NoError(t, err)

	records := []GuestRecord{
		{FirstName: "محمد", LastName: "احمدی"},
		{FirstName: "محمد", LastName: "احمدی"},
		{FirstName: "زهرا", LastName: "کاظمی"},
	}

	result, err := engine.FindSimilar(records)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Report.Records)
	assert.Equal(t, 3, result.Report.CandidatePairs)
	assert.Equal(t, 3, result.Report.ScoredPairs)
	assert.Equal(t, len(result.Matches), result.Report.Matches)
}

func TestEngineParallelScoringMatchesSerial(t *testing.T) {
	records := make([]GuestRecord, 0, 18)
	for i := 0; i < 9; i++ {
		records = append(records,
			GuestRecord{FirstName: "محمد", LastName: fmt.Sprintf("احمدی%d", i)},
			GuestRecord{FirstName: "محمد", LastName: fmt.Sprintf("احمدی%d", i)},
		)
	}

	serial, err := NewEngine(DefaultSettings(), WithWorkers(1))
	require.NoError(t, err)
	parallel, err := NewEngine(DefaultSettings(), WithWorkers(8))
	require.NoError(t, err)

	serialResult, err := serial.FindSimilar(records)
	require.NoError(t, err)
	parallelResult, err := parallel.FindSimilar(records)
	require.NoError(t, err)

	assert.Equal(t, serialResult.Matches, parallelResult.Matches)
}

func TestEngineCustomCharNormalizer(t *testing.T) {
	// A locale that folds everything to lower case, standing in for a
	// deployment-specific canonicalizer.
	fold := func(s string) string {
		out := make([]rune, 0, len(s))
		for _, r := range s {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			out = append(out, r)
		}
		return string(out)
	}

	engine, err := NewEngine(DefaultSettings(), WithCharNormalizer(fold))
	require.NoError(t, err)

	records := []GuestRecord{
		{FirstName: "John", LastName: "Smith"},
		{FirstName: "JOHN", LastName: "SMITH"},
	}

	result, err := engine.FindSimilar(records)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.True(t, result.Matches[0].ExactMatch)
}

func TestEngineEmptyInput(t *testing.T) {
	engine, err := NewEngine(DefaultSettings())
	require.NoError(t, err)

	result, err := engine.FindSimilar(nil)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 0, result.Report.Records)
}

func TestEngineKeepWhenEmptiedSetting(t *testing.T) {
	// Two guests whose first names are pure honorifics. With KeepWhenEmptied
	// on (the default) the differing honorifics keep the names apart; turned
	// off, both first names empty out and the identical last names collide as
	// an exact duplicate.
	records := []GuestRecord{
		{FirstName: "دکتر", LastName: "احمدی"},
		{FirstName: "مهندس", LastName: "احمدی"},
	}

	keep, err := NewEngine(DefaultSettings())
	require.NoError(t, err)
	keepResult, err := keep.FindSimilar(records)
	require.NoError(t, err)
	for _, m := range keepResult.Matches {
		assert.False(t, m.ExactMatch)
	}

	settings := DefaultSettings()
	settings.KeepWhenEmptied = false
	drop, err := NewEngine(settings)
	require.NoError(t, err)
	dropResult, err := drop.FindSimilar(records)
	require.NoError(t, err)
	require.Len(t, dropResult.Matches, 1)
	assert.True(t, dropResult.Matches[0].ExactMatch)
	assert.Equal(t, "احمدی", dropResult.Matches[0].Name1)
}
