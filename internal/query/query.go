// Package query parses list parameters: pagination and sorting.
package query

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/sumire/hess/internal/apierr"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Order sorts by one column.
type Order struct {
	Column     string
	Descending bool
}

// Direction renders the SQL direction keyword.
func (o Order) Direction() string {
	if o.Descending {
		return "DESC"
	}
	return "ASC"
}

// List is a parsed list request.
type List struct {
	Page  Page
	Order []Order
}

// ParsePage reads "page" and "size". Absent parameters take their defaults.
func ParsePage(values url.Values) (Page, error) {
	page := Page{Number: 1, Size: DefaultPageSize}

	if values.Has("page") {
		n, kind := parseCount(values.Get("page"))
		if kind != "" {
			return Page{}, apierr.InvalidPaginationPageQueryField(kind)
		}
		page.Number = n
	}
	if values.Has("size") {
		n, kind := parseCount(values.Get("size"))
		if kind == "" && n > MaxPageSize {
			kind = apierr.IntErrorPosOverflow
		}
		if kind != "" {
			return Page{}, apierr.InvalidPaginationSizeQueryField(kind)
		}
		page.Size = n
	}
	return page, nil
}

// parseCount parses a strictly positive 32-bit count.
func parseCount(raw string) (int, apierr.IntErrorKind) {
	if raw == "" {
		return 0, apierr.IntErrorEmpty
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(raw, "-") {
				return 0, apierr.IntErrorNegOverflow
			}
			return 0, apierr.IntErrorPosOverflow
		}
		return 0, apierr.IntErrorInvalidDigit
	}
	switch {
	case n == 0:
		return 0, apierr.IntErrorZero
	case n < 0:
		return 0, apierr.IntErrorInvalidDigit
	}
	return int(n), ""
}

// ParseSort reads a "field[:asc|desc]" comma-separated list. columns maps
// accepted field names to their SQL column.
func ParseSort(raw string, columns map[string]string) ([]Order, error) {
	if raw == "" {
		return nil, nil
	}
	var orders []Order
	for _, item := range strings.Split(raw, ",") {
		field, dir, hasDir := strings.Cut(strings.TrimSpace(item), ":")
		if field == "" {
			return nil, apierr.InvalidSortingQuerySyntax()
		}
		order := Order{}
		if hasDir {
			switch strings.ToLower(dir) {
			case "asc":
			case "desc":
				order.Descending = true
			default:
				return nil, apierr.InvalidSortingQuerySyntax()
			}
		}
		column, ok := columns[field]
		if !ok {
			return nil, apierr.NonExistentSortingQueryField(field)
		}
		order.Column = column
		orders = append(orders, order)
	}
	return orders, nil
}

// ParseList reads pagination and sorting from a query string.
func ParseList(values url.Values, columns map[string]string) (List, error) {
	page, err := ParsePage(values)
	if err != nil {
		return List{}, err
	}
	order, err := ParseSort(values.Get("sort"), columns)
	if err != nil {
		return List{}, err
	}
	return List{Page: page, Order: order}, nil
}
