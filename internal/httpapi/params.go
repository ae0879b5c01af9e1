package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diego28e/backend-wealth-builder/internal/apperr"
	"github.com/diego28e/backend-wealth-builder/internal/models"
)

const dayLayout = "2006-01-02"

// flexTime accepts RFC 3339 timestamps and bare YYYY-MM-DD dates (UTC midnight).
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	v, err := parseTime(s)
	if err != nil {
		return err
	}
	*t = flexTime(v)
	return nil
}

func (t *flexTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := time.Time(*t)
	return &v
}

func parseTime(s string) (time.Time, error) {
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return v, nil
	}
	if v, err := time.Parse(dayLayout, s); err == nil {
		return v, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid id %q", raw)
	}
	return id, nil
}

// dateRange reads start_date and end_date. A bare end date covers the whole day.
func dateRange(r *http.Request) (models.DateRange, error) {
	var out models.DateRange
	q := r.URL.Query()
	if s := q.Get("start_date"); s != "" {
		v, err := parseTime(s)
		if err != nil {
			return out, apperr.Validation("start_date: %v", err)
		}
		out.Start = &v
	}
	if s := q.Get("end_date"); s != "" {
		v, err := parseTime(s)
		if err != nil {
			return out, apperr.Validation("end_date: %v", err)
		}
		if len(s) == len(dayLayout) {
			v = v.Add(24*time.Hour - time.Nanosecond)
		}
		out.End = &v
	}
	return out, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Validation("%s must be a number", key)
	}
	return v, nil
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}
