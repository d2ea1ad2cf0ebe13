package service

import (
	"github.com/rs/zerolog"

	"despesas/internal/model"
)

// PeriodResult is the outcome of one period within a run.
type PeriodResult struct {
	Period model.Period
	State  model.PeriodState
	// Upstream is the number of distinct storable document numbers in the payload.
	Upstream      int
	Written       int
	Skipped       int
	FailedBatches int
	Err           error
}

// Summary aggregates a run for the operator.
type Summary struct {
	RunID          string
	Periods        int
	Done           int
	Empty          int
	FetchFailed    int
	SkippedPeriods int
	Written        int
	Skipped        int
	Mismatches     int
	Scanned        int
	Recategorized  int
	Results        []PeriodResult
}

// Add folds a period outcome into the summary.
func (s *Summary) Add(r PeriodResult) {
	s.Results = append(s.Results, r)
	switch r.State {
	case model.StateSkipped:
		s.SkippedPeriods++
		return
	case model.StateDone:
		s.Done++
	case model.StateEmpty:
		s.Empty++
	case model.StateFetchFailed:
		s.FetchFailed++
	}
	s.Periods++
	s.Written += r.Written
	s.Skipped += r.Skipped
}

// Log writes the one-line run summary.
func (s *Summary) Log(log zerolog.Logger, msg string) {
	log.Info().
		Str("run_id", s.RunID).
		Int("periods", s.Periods).
		Int("done", s.Done).
		Int("empty", s.Empty).
		Int("fetch_failed", s.FetchFailed).
		Int("periods_skipped", s.SkippedPeriods).
		Int("written", s.Written).
		Int("skipped", s.Skipped).
		Int("mismatches", s.Mismatches).
		Int("scanned", s.Scanned).
		Int("recategorized", s.Recategorized).
		Msg(msg)
}
