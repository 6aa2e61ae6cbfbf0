// This file parses request bodies, path parameters and listing queries.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"incometracker/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decodeJSON reads one JSON object into dst. An empty or malformed body is a
// validation error.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return core.Invalid("common.invalid_request")
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return core.Invalid("common.invalid_request")
	}
	return nil
}

// amountInput accepts an amount as a JSON number or a decimal string.
type amountInput struct {
	raw string
	set bool
}

func (a *amountInput) UnmarshalJSON(b []byte) error {
	a.set = true
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		a.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	a.raw = n.String()
	return nil
}

func (a amountInput) money() (core.Money, error) {
	return core.ParseMoney(a.raw)
}

// parseDateField parses a YYYY-MM-DD body field.
func parseDateField(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, core.Invalid("transactions.date_required")
	}
	d, err := core.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, core.Invalid("transactions.date_invalid")
	}
	return d, nil
}

// pathID reads the {id} route parameter. Malformed ids are not found.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NotFound("common.not_found")
	}
	return id, nil
}

// queryInt returns the integer value of key, or def when absent or malformed.
func queryInt(q url.Values, key string, def int) int {
	if v := strings.TrimSpace(q.Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// parseTransactionFilter reads the listing parameters shared by the
// transaction endpoints.
func parseTransactionFilter(q url.Values) (core.TransactionFilter, error) {
	f := core.TransactionFilter{
		Page:      queryInt(q, "page", 1),
		PerPage:   queryInt(q, "per_page", 0),
		Search:    q.Get("search"),
		SortBy:    strings.ToLower(strings.TrimSpace(q.Get("sort_by"))),
		Ascending: strings.EqualFold(strings.TrimSpace(q.Get("sort_order")), "asc"),
	}

	// Unknown types and malformed category ids do not filter.
	if t, err := core.ParseTxType(q.Get("type")); err == nil {
		f.Type = t
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(q.Get("category_id")), 10, 64); err == nil && id > 0 {
		f.CategoryID = id
	}
	for key, dst := range map[string]*core.Date{"start_date": &f.From, "end_date": &f.To} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			d, err := core.ParseDate(v)
			if err != nil {
				return core.TransactionFilter{}, core.Invalid("common.date_invalid")
			}
			*dst = d
		}
	}
	return f, nil
}
