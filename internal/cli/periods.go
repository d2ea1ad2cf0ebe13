package cli

import (
	"fmt"

	"despesas/internal/config"
	"despesas/internal/model"
)

// periodRange expands the --from/--to flags. Empty from means January of startYear,
// empty to means the logical current period.
func periodRange(municipality, from, to string, startYear, curYear, curMonth int) ([]model.Period, error) {
	fy, fm := startYear, 1
	if from != "" {
		var err error
		if fy, fm, err = config.ParseYearMonth(from); err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
	}
	ty, tm := curYear, curMonth
	if to != "" {
		var err error
		if ty, tm, err = config.ParseYearMonth(to); err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
	}

	first := model.Period{Year: fy, Month: fm}
	if (model.Period{Year: ty, Month: tm}).Before(first) {
		return nil, fmt.Errorf("--from %04d-%02d is after --to %04d-%02d", fy, fm, ty, tm)
	}
	return model.PeriodRange(municipality, fy, fm, ty, tm), nil
}

// explicitPeriods parses repeated --period flags.
func explicitPeriods(municipality string, values []string) ([]model.Period, error) {
	out := make([]model.Period, 0, len(values))
	seen := make(map[model.Period]bool, len(values))
	for _, v := range values {
		y, m, err := config.ParseYearMonth(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --period: %w", err)
		}
		p := model.Period{Municipality: municipality, Year: y, Month: m}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

// criticalPeriods lists the critical months of every year from startYear through
// the current one, stopping at the current period.
func criticalPeriods(municipality string, critical []int, startYear, curYear, curMonth int) []model.Period {
	var out []model.Period
	for y := startYear; y <= curYear; y++ {
		for _, m := range critical {
			p := model.Period{Municipality: municipality, Year: y, Month: m}
			if p.After(curYear, curMonth) {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
