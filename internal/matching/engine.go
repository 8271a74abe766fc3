package matching

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// Engine runs the full matching pipeline. Construct once per run with
// NewEngine; FindSimilar is a pure function of the input records and the
// validated settings.
type Engine struct {
	settings   Settings
	normalizer *Normalizer
	chars      CharNormalizer
	workers    int
}

// Option configures optional engine capabilities.
type Option func(*Engine)

// WithCharNormalizer replaces the default Persian canonicalizer, keeping the
// mandatory prefix-stripping behavior.
func WithCharNormalizer(chars CharNormalizer) Option {
	return func(e *Engine) { e.chars = chars }
}

// WithNormalizer replaces the whole normalizer, including the prefix
// vocabulary.
func WithNormalizer(n *Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// WithWorkers sets the number of goroutines used for pair scoring; n < 1
// keeps the default of one per CPU. Scoring is a pure function over immutable
// inputs, so partitions are independent; the final global sort makes partition
// order irrelevant.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine validates settings and builds an engine.
func NewEngine(settings Settings, opts ...Option) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching settings: %w", err)
	}
	e := &Engine{
		settings: settings,
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.normalizer == nil {
		stripper := NewPrefixStripper()
		stripper.KeepWhenEmptied = settings.KeepWhenEmptied
		e.normalizer = NewNormalizer(e.chars, stripper)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e, nil
}

// Report carries run diagnostics back to the caller instead of the engine
// logging as a side effect.
type Report struct {
	Records        int      `json:"records"`
	CandidatePairs int      `json:"candidate_pairs"`
	ScoredPairs    int      `json:"scored_pairs"`
	Matches        int      `json:"matches"`
	StopFirstNames []string `json:"stop_first_names"`
}

// Result is the terminal artifact of one run.
type Result struct {
	Matches []Match `json:"matches"`
	Report  Report  `json:"report"`
}

// FindSimilar runs normalize -> stop-name derivation -> candidate generation
// -> scoring -> resolution over the given records.
func (e *Engine) FindSimilar(records []GuestRecord) (*Result, error) {
	normalized := NormalizeRecords(records, e.normalizer)

	settings := e.settings
	if settings.StopFirstNames == nil {
		settings.StopFirstNames = ExtractStopFirstNames(normalized, settings.MinFrequency)
	}

	candidates := GeneratePairs(normalized, settings.BlockingSwitchSize)
	scored := e.scoreAll(candidates, normalized, &settings)
	matches := Resolve(scored, normalized, &settings)

	stopNames := make([]string, 0, len(settings.StopFirstNames))
	for name := range settings.StopFirstNames {
		stopNames = append(stopNames, name)
	}
	sort.Strings(stopNames)

	return &Result{
		Matches: matches,
		Report: Report{
			Records:        len(records),
			CandidatePairs: len(candidates),
			ScoredPairs:    len(scored),
			Matches:        len(matches),
			StopFirstNames: stopNames,
		},
	}, nil
}

// scoreAll scores the candidate list, partitioned across workers for large
// runs. Pairs keep their candidate-list positions, so the output is identical
// to serial scoring.
func (e *Engine) scoreAll(candidates []CandidatePair, records []NormalizedRecord, s *Settings) []ScoredPair {
	scored := make([]ScoredPair, len(candidates))

	workers := e.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	if workers <= 1 {
		for i, p := range candidates {
			scored[i] = scorePairAt(p, records, s)
		}
		return scored
	}

	var wg sync.WaitGroup
	chunk := (len(candidates) + workers - 1) / workers
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				scored[i] = scorePairAt(candidates[i], records, s)
			}
		}(start, end)
	}
	wg.Wait()
	return scored
}

func scorePairAt(p CandidatePair, records []NormalizedRecord, s *Settings) ScoredPair {
	sp := ScorePair(records[p.I], records[p.J], s)
	sp.CandidatePair = p
	return sp
}
