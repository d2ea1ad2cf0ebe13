// Package normalize converts upstream locale formatted records into canonical expenses.
//
// Every function here is pure. Amounts use "." as thousands separator and "," as the
// decimal separator ("1.234,56"); dates are DD/MM/YYYY.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"despesas/internal/model"
)

// FallbackNote is used in the description when the upstream note is absent.
const FallbackNote = "Despesa registrada"

var (
	// ErrMalformedRecord is the umbrella for every per-record failure; the record is dropped.
	ErrMalformedRecord = errors.New("malformed record")
	ErrMalformedAmount = fmt.Errorf("%w: malformed amount", ErrMalformedRecord)
	ErrMalformedDate   = fmt.Errorf("%w: malformed date", ErrMalformedRecord)
	ErrMissingDocument = fmt.Errorf("%w: missing document number", ErrMalformedRecord)
	ErrUndecodable     = fmt.Errorf("%w: undecodable item", ErrMalformedRecord)
)

// ParseAmount parses a locale formatted amount such as "1.234,56".
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	return d, nil
}

// FormatAmount renders a decimal back into the upstream locale form.
func FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

// ParseDate converts "DD/MM/YYYY" into "YYYY-MM-DD", keeping each component as received,
// and returns the numeric year and month for the denormalized period columns.
// The triple must name a real calendar day.
func ParseDate(raw string) (iso string, year int, month int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
	}
	day, m, y := parts[0], parts[1], parts[2]

	year, yErr := strconv.Atoi(y)
	month, mErr := strconv.Atoi(m)
	d, dErr := strconv.Atoi(day)
	if yErr != nil || mErr != nil || dErr != nil || !validDay(year, month, d) {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
	}
	return y + "-" + m + "-" + day, year, month, nil
}

func validDay(year, month, day int) bool {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}

// Description composes "<event>: <note>", substituting FallbackNote for an empty note.
func Description(event, note string) string {
	if strings.TrimSpace(note) == "" {
		note = FallbackNote
	}
	return event + ": " + note
}

// Decode unmarshals one upstream array item.
func Decode(item json.RawMessage) (model.RawExpenseRecord, error) {
	var rec model.RawExpenseRecord
	if err := json.Unmarshal(item, &rec); err != nil {
		return model.RawExpenseRecord{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return rec, nil
}

// Normalize builds the canonical expense for raw. Category is left empty; the
// caller classifies the record.
func Normalize(raw model.RawExpenseRecord, sourceURL string) (model.Expense, error) {
	doc := strings.TrimSpace(raw.DocumentNumber)
	if doc == "" {
		return model.Expense{}, ErrMissingDocument
	}

	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return model.Expense{}, err
	}

	date, year, month, err := ParseDate(raw.Date)
	if err != nil {
		return model.Expense{}, err
	}

	return model.Expense{
		Date:           date,
		Amount:         amount,
		Description:    Description(raw.Event, raw.Note),
		SupplierName:   raw.Supplier,
		DocumentNumber: doc,
		Year:           year,
		Month:          month,
		SourceURL:      sourceURL,
	}, nil
}
