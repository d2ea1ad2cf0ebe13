package service

import (
	"errors"

	"despesas/internal/classifier"
	"despesas/internal/metrics"
	"despesas/internal/model"
	"despesas/internal/normalize"
	"despesas/internal/upstream"
)

// droppedRecord is a record that could not be turned into an expense.
type droppedRecord struct {
	DocumentNumber string
	Reason         string
	Err            error
}

// prepared is a fetched payload after normalization and classification.
type prepared struct {
	Expenses []model.Expense
	Dropped  []droppedRecord
	// Distinct counts the distinct document numbers dated inside the fetched
	// period, the rows a (year, month) count of the store can see.
	Distinct int
}

// prepare decodes, normalizes and classifies every record of res, fetched for p.
// A malformed record is dropped and the rest continue.
func prepare(p model.Period, res *upstream.Result) prepared {
	var out prepared
	docs := make(map[string]struct{}, len(res.Records))

	for _, item := range res.Records {
		raw, err := normalize.Decode(item)
		if err != nil {
			out.Dropped = append(out.Dropped, droppedRecord{Reason: skipReason(err), Err: err})
			continue
		}
		e, err := normalize.Normalize(raw, res.URL)
		if err != nil {
			out.Dropped = append(out.Dropped, droppedRecord{DocumentNumber: raw.DocumentNumber, Reason: skipReason(err), Err: err})
			continue
		}
		e.Category = classifier.Classify(raw.Organ, raw.Supplier, raw.Note)
		out.Expenses = append(out.Expenses, e)
		if e.Year == p.Year && e.Month == p.Month {
			docs[e.DocumentNumber] = struct{}{}
		}
	}
	out.Distinct = len(docs)
	return out
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, normalize.ErrMalformedAmount):
		return metrics.ReasonMalformedAmount
	case errors.Is(err, normalize.ErrMalformedDate):
		return metrics.ReasonMalformedDate
	case errors.Is(err, normalize.ErrMissingDocument):
		return metrics.ReasonMissingDocument
	default:
		return metrics.ReasonUndecodable
	}
}
