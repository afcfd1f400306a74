package types

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is the list envelope: total row count, absolute next/previous URLs and
// the current page of results.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// PageParams reads page/limit query parameters, clamping limit to MaxPageSize.
func PageParams(r *http.Request) (page, limit int) {
	page = 1
	limit = DefaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
	}
	return page, limit
}

// NewPage builds the envelope for one page of results, deriving next/previous
// links from the request URL.
func NewPage(r *http.Request, count int64, page, limit int, results interface{}) Page {
	p := Page{Count: count, Results: results}
	if int64(page*limit) < count {
		p.Next = pageURL(r, page+1)
	}
	if page > 1 {
		p.Previous = pageURL(r, page-1)
	}
	return p
}

func pageURL(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	abs := url.URL{
		Scheme:   "http",
		Host:     r.Host,
		Path:     u.Path,
		RawQuery: u.RawQuery,
	}
	if r.TLS != nil {
		abs.Scheme = "https"
	}
	s := abs.String()
	return &s
}
