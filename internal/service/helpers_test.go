package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"despesas/internal/config"
	"despesas/internal/model"
	"despesas/internal/upstream"
)

// stubFetcher serves canned payloads keyed by period.
type stubFetcher struct {
	payloads map[model.Period]string
	errs     map[model.Period]error
	calls    map[model.Period]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		payloads: map[model.Period]string{},
		errs:     map[model.Period]error{},
		calls:    map[model.Period]int{},
	}
}

func (f *stubFetcher) URL(p model.Period) string {
	return "https://example.org/despesas/" + p.Municipality + "/" + strconv.Itoa(p.Year) + "/" + strconv.Itoa(p.Month)
}

func (f *stubFetcher) Fetch(_ context.Context, p model.Period) (*upstream.Result, error) {
	f.calls[p]++
	if err := f.errs[p]; err != nil {
		return nil, err
	}
	body := f.payloads[p]
	res := &upstream.Result{URL: f.URL(p), Body: []byte(body)}
	var items []json.RawMessage
	if json.Unmarshal([]byte(body), &items) == nil {
		res.Records = items
	}
	return res, nil
}

func period(year, month int) model.Period {
	return model.Period{Municipality: "sao-jose-do-rio-preto", Year: year, Month: month}
}

func rawRecord(doc, supplier, note, amount, date string) string {
	b, _ := json.Marshal(model.RawExpenseRecord{
		Organ:          "PREFEITURA MUNICIPAL",
		Supplier:       supplier,
		Note:           note,
		Event:          "Empenho",
		Amount:         amount,
		Date:           date,
		DocumentNumber: doc,
	})
	return string(b)
}

// payload builds n valid records dated in the given period.
func payload(year, month, n int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += rawRecord(
			fmt.Sprintf("%04d%02d-%03d", year, month, i),
			"FORNECEDOR",
			"SERVICOS DIVERSOS",
			"10,00",
			fmt.Sprintf("10/%02d/%04d", month, year),
		)
	}
	return out + "]"
}

func pipelineConfig(current string) config.PipelineConfig {
	return config.PipelineConfig{BatchSize: 100, StartYear: 2024, CurrentPeriod: current, CriticalMonths: []int{1}}
}

func fixedClock(year, month int) func() time.Time {
	return func() time.Time { return time.Date(year, time.Month(month), 15, 12, 0, 0, 0, time.UTC) }
}
