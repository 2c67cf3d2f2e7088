package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"budgetvs/internal/aggregate"
	"budgetvs/internal/core"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks bodies that are not JSON at all.
var errBadRequest = errors.New("bad request")

// amount accepts a JSON number or a decimal string such as "12,50".
type amount struct {
	Value float64
	Set   bool
}

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = amount{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return err
		}
		*a = amount{Value: v, Set: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: amount must be a number", core.ErrInvalidInput)
	}
	*a = amount{Value: v, Set: true}
	return nil
}

// date accepts YYYY-MM-DD or RFC3339.
type date struct {
	core.Date
}

func (d *date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: date must be a string", core.ErrInvalidDate)
	}
	parsed, err := core.ParseDate(s)
	if err != nil {
		return err
	}
	d.Date = parsed
	return nil
}

type categoryRequest struct {
	Name     string `json:"name"`
	Budgeted amount `json:"budgeted"`
}

type budgetRequest struct {
	Amount amount `json:"amount"`
}

type expenseRequest struct {
	Category string `json:"category"`
	Amount   amount `json:"amount"`
	Date     *date  `json:"date"`
}

// record converts the request into a ledger row. A missing date means
// today (UTC).
func (e expenseRequest) record(now time.Time) (core.ExpenseRecord, error) {
	if !e.Amount.Set {
		return core.ExpenseRecord{}, fmt.Errorf("%w: amount is required", core.ErrInvalidInput)
	}
	d := core.NewDate(now.UTC().Year(), int(now.UTC().Month()), now.UTC().Day())
	if e.Date != nil {
		d = e.Date.Date
	}
	return core.ExpenseRecord{Category: sanitizeInput(e.Category), Amount: e.Amount.Value, Date: d}, nil
}

type entriesRequest struct {
	Category string      `json:"category"`
	Entries  []entryJSON `json:"entries"`
}

// entries converts the decoded rows for the aggregate package. A key that
// was absent stays nil; a key holding anything but a JSON number becomes NaN.
func (e entriesRequest) entries() []aggregate.Entry {
	out := make([]aggregate.Entry, len(e.Entries))
	for i, row := range e.Entries {
		out[i] = aggregate.Entry{
			Category: row.Category,
			Budgeted: row.Budgeted.ptr(),
			Actual:   row.Actual.ptr(),
		}
	}
	return out
}

type entryJSON struct {
	Category *string    `json:"Category"`
	Budgeted entryValue `json:"Budgeted"`
	Actual   entryValue `json:"Actual"`
}

// entryValue records that its key was present. Strings, booleans, objects
// and null are kept as NaN so that each calculation applies its own rule to
// non-numeric amounts.
type entryValue struct {
	v       float64
	present bool
}

func (n *entryValue) UnmarshalJSON(data []byte) error {
	n.present = true
	if err := json.Unmarshal(data, &n.v); err != nil || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.v = math.NaN()
	}
	return nil
}

func (n entryValue) ptr() *float64 {
	if !n.present {
		return nil
	}
	v := n.v
	return &v
}

type seriesPoint struct {
	Date   *date    `json:"date"`
	Actual *float64 `json:"actual"`
}

type trendRequest struct {
	Category string        `json:"category"`
	Series   []seriesPoint `json:"series"`
}

func (t trendRequest) points() ([]core.Point, error) {
	out := make([]core.Point, len(t.Series))
	for i, p := range t.Series {
		if p.Date == nil || p.Actual == nil {
			return nil, fmt.Errorf("%w: series point %d needs date and actual", core.ErrInvalidInput, i)
		}
		out[i] = core.Point{Date: p.Date.Date, Actual: *p.Actual}
	}
	return out, nil
}

// decodeJSON reads one JSON value from the body. Values of the wrong JSON
// type inside "entries" (a row that is not an object, a Category that is not
// a string) are malformed budget entries; elsewhere they are invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrInvalidAmount):
			return err
		case errors.As(err, &typeErr):
			if typeErr.Field == "entries" || strings.HasPrefix(typeErr.Field, "entries.") {
				return fmt.Errorf("%w: %s must be %s", core.ErrMalformedEntry, typeErr.Field, typeErr.Type)
			}
			return fmt.Errorf("%w: %s has the wrong type", core.ErrInvalidInput, typeErr.Field)
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body larger than %d bytes", errBadRequest, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", errBadRequest)
		default:
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	return nil
}

// sanitizeInput removes control characters except tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
