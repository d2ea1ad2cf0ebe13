package model

import (
	"fmt"
	"time"
)

// Period identifies one fetch unit against the upstream API.
type Period struct {
	Municipality string `json:"municipality"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
}

func (p Period) String() string {
	return fmt.Sprintf("%s/%04d-%02d", p.Municipality, p.Year, p.Month)
}

// After reports whether p falls strictly after the given year and month.
func (p Period) After(year, month int) bool {
	if p.Year != year {
		return p.Year > year
	}
	return p.Month > month
}

// Before orders periods year first, then month. Municipality breaks ties.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	if p.Month != o.Month {
		return p.Month < o.Month
	}
	return p.Municipality < o.Municipality
}

// PeriodRange expands every month from (fromYear, fromMonth) to (toYear, toMonth) inclusive.
func PeriodRange(municipality string, fromYear, fromMonth, toYear, toMonth int) []Period {
	var out []Period
	start := time.Date(fromYear, time.Month(fromMonth), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear, time.Month(toMonth), 1, 0, 0, 0, 0, time.UTC)
	for t := start; !t.After(end); t = t.AddDate(0, 1, 0) {
		out = append(out, Period{Municipality: municipality, Year: t.Year(), Month: int(t.Month())})
	}
	return out
}

// PeriodState is the lifecycle state of a period within one run.
type PeriodState string

const (
	StatePending     PeriodState = "pending"
	StateFetched     PeriodState = "fetched"
	StateNormalized  PeriodState = "normalized"
	StateWritten     PeriodState = "written"
	StateDone        PeriodState = "done"
	StateEmpty       PeriodState = "empty"
	StateFetchFailed PeriodState = "fetch_failed"
	StateSkipped     PeriodState = "skipped"
)

// Terminal reports whether no further transition can happen within the run.
func (s PeriodState) Terminal() bool {
	switch s {
	case StateDone, StateEmpty, StateFetchFailed, StateSkipped:
		return true
	default:
		return false
	}
}
