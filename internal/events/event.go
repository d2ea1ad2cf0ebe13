// Package events announces terminal period outcomes to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"despesas/internal/model"
)

// PeriodEvent is published once per period reaching a terminal state in a run.
type PeriodEvent struct {
	RunID        string            `json:"run_id"`
	Municipality string            `json:"municipality"`
	Year         int               `json:"year"`
	Month        int               `json:"month"`
	State        model.PeriodState `json:"state"`
	Written      int               `json:"written"`
	Skipped      int               `json:"skipped"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// NewPeriodEvent builds the event for a period outcome.
func NewPeriodEvent(runID string, p model.Period, state model.PeriodState, written, skipped int) PeriodEvent {
	return PeriodEvent{
		RunID:        runID,
		Municipality: p.Municipality,
		Year:         p.Year,
		Month:        p.Month,
		State:        state,
		Written:      written,
		Skipped:      skipped,
		OccurredAt:   time.Now().UTC(),
	}
}

func (e PeriodEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher sends period events.
type Publisher interface {
	Publish(ctx context.Context, e PeriodEvent) error
	Close() error
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, PeriodEvent) error { return nil }
func (Nop) Close() error                               { return nil }
