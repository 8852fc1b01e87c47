package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Offset   int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:     1,
		PageSize: defaultPageSize,
		Offset:   0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request.
// Invalid or out-of-range values fall back to the defaults; page_size
// is capped at 100.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if pageSize := r.URL.Query().Get("page_size"); pageSize != "" {
		if v, err := strconv.Atoi(pageSize); err == nil && v > 0 {
			if v > maxPageSize {
				v = maxPageSize
			}
			p.PageSize = v
		}
	}

	p.Offset = (p.Page - 1) * p.PageSize
	return p
}

// Page wraps a paginated list response. Next and Previous hold the
// request URL with the page parameter adjusted, or null at the edges.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds a paginated envelope from a result slice and the total
// row count. Neighbour links are derived from the request URL, keeping
// every query parameter except page intact.
func NewPage[T any](r *http.Request, results []T, count int, params Params) Page[T] {
	if results == nil {
		results = []T{}
	}

	page := Page[T]{
		Count:   count,
		Results: results,
	}

	if params.Page*params.PageSize < count {
		page.Next = pageLink(r.URL, params.Page+1)
	}
	if params.Page > 1 {
		page.Previous = pageLink(r.URL, params.Page-1)
	}

	return page
}

func pageLink(u *url.URL, page int) *string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))

	link := u.Path + "?" + q.Encode()
	return &link
}
