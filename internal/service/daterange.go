package service

import (
	"strings"
	"time"

	"pettycash/internal/apperr"
	"pettycash/internal/repository"
)

const dateLayout = "2006-01-02"

// DateRangeInput bounds a query on created_at. Values are YYYY-MM-DD or RFC 3339.
type DateRangeInput struct {
	StartDate string `form:"start_date" json:"start_date"`
	EndDate   string `form:"end_date" json:"end_date"`
}

// parseDateRange converts the input into an inclusive created_at range. A date-only
// end date covers the whole day.
func parseDateRange(in DateRangeInput) (repository.TimeRange, error) {
	var rng repository.TimeRange

	if s := strings.TrimSpace(in.StartDate); s != "" {
		from, _, err := parseBound(s)
		if err != nil {
			return rng, apperr.Validation("invalid start_date: expected YYYY-MM-DD or RFC 3339")
		}
		rng.From = &from
	}

	if s := strings.TrimSpace(in.EndDate); s != "" {
		to, dateOnly, err := parseBound(s)
		if err != nil {
			return rng, apperr.Validation("invalid end_date: expected YYYY-MM-DD or RFC 3339")
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1)
			rng.ToExclusive = true
		}
		rng.To = &to
	}

	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return rng, apperr.Validation("end_date must not be before start_date")
	}
	return rng, nil
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
