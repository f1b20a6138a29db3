package listing

import (
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	maxLimit     = 100
)

// Op is a comparison operator accepted by the catalog filter syntax
// (field[op]=value in the query string).
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

func ParseOp(raw string) (Op, bool) {
	switch Op(strings.ToLower(strings.TrimSpace(raw))) {
	case OpEq:
		return OpEq, true
	case OpGt:
		return OpGt, true
	case OpGte:
		return OpGte, true
	case OpLt:
		return OpLt, true
	case OpLte:
		return OpLte, true
	case OpIn:
		return OpIn, true
	default:
		return "", false
	}
}

// FieldKind tells repositories how to coerce filter values.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
)

// FilterableFields maps the public filter names onto their value kinds.
// Unknown fields are dropped during normalization.
var FilterableFields = map[string]FieldKind{
	"city":          KindString,
	"country":       KindString,
	"guests":        KindNumber,
	"bedrooms":      KindNumber,
	"bathrooms":     KindNumber,
	"pricePerNight": KindNumber,
}

type Filter struct {
	Field  string
	Op     Op
	Values []string
}

type SortKey struct {
	Field string
	Desc  bool
}

type Query struct {
	Filters []Filter
	Sort    []SortKey
	Page    int
	Limit   int
}

// Normalized returns a sanitized copy: unknown filter fields removed,
// paging defaulted to page 1 / limit 10, newest-first when no sort given.
func (q Query) Normalized() Query {
	normalized := q
	filters := make([]Filter, 0, len(q.Filters))
	for _, f := range q.Filters {
		if _, ok := FilterableFields[f.Field]; !ok {
			continue
		}
		if len(f.Values) == 0 {
			continue
		}
		if f.Op == "" {
			f.Op = OpEq
		}
		filters = append(filters, f)
	}
	normalized.Filters = filters
	if len(normalized.Sort) == 0 {
		normalized.Sort = []SortKey{{Field: "createdAt", Desc: true}}
	}
	if normalized.Page < 1 {
		normalized.Page = DefaultPage
	}
	if normalized.Limit <= 0 {
		normalized.Limit = DefaultLimit
	}
	if normalized.Limit > maxLimit {
		normalized.Limit = maxLimit
	}
	return normalized
}

func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// ParseSort accepts the comma-separated form used on the wire, with a
// leading '-' marking descending order (e.g. "-createdAt,pricePerNight").
func ParseSort(raw string) []SortKey {
	var keys []SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		keys = append(keys, SortKey{Field: strings.TrimPrefix(part, "-"), Desc: desc})
	}
	return keys
}

type Result struct {
	Items []*Listing
	Total int
}

// Matches evaluates a single filter against a listing. Used by the
// in-memory repository; the Mongo repository translates filters to
// operators server-side instead.
func (f Filter) Matches(l *Listing) bool {
	kind, ok := FilterableFields[f.Field]
	if !ok {
		return true
	}
	switch kind {
	case KindString:
		return matchString(fieldString(l, f.Field), f)
	case KindNumber:
		return matchNumber(fieldNumber(l, f.Field), f)
	default:
		return true
	}
}

func fieldString(l *Listing, field string) string {
	switch field {
	case "city":
		return l.City
	case "country":
		return l.Country
	default:
		return ""
	}
}

func fieldNumber(l *Listing, field string) float64 {
	switch field {
	case "guests":
		return float64(l.Guests)
	case "bedrooms":
		return float64(l.Bedrooms)
	case "bathrooms":
		return float64(l.Bathrooms)
	case "pricePerNight":
		return l.PricePerNight
	default:
		return 0
	}
}

func matchString(value string, f Filter) bool {
	switch f.Op {
	case OpIn:
		for _, candidate := range f.Values {
			if strings.EqualFold(value, candidate) {
				return true
			}
		}
		return false
	default:
		return strings.EqualFold(value, f.Values[0])
	}
}

func matchNumber(value float64, f Filter) bool {
	if f.Op == OpIn {
		for _, raw := range f.Values {
			if candidate, err := strconv.ParseFloat(raw, 64); err == nil && candidate == value {
				return true
			}
		}
		return false
	}
	target, err := strconv.ParseFloat(f.Values[0], 64)
	if err != nil {
		return false
	}
	switch f.Op {
	case OpGt:
		return value > target
	case OpGte:
		return value >= target
	case OpLt:
		return value < target
	case OpLte:
		return value <= target
	default:
		return value == target
	}
}

// SortListings orders a slice in place per the sort keys.
func SortListings(items []*Listing, keys []SortKey) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, key := range keys {
			cmp := compareListings(items[i], items[j], key.Field)
			if cmp == 0 {
				continue
			}
			if key.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareListings(a, b *Listing, field string) int {
	switch field {
	case "pricePerNight":
		return compareFloat(a.PricePerNight, b.PricePerNight)
	case "guests":
		return a.Guests - b.Guests
	case "bedrooms":
		return a.Bedrooms - b.Bedrooms
	case "bathrooms":
		return a.Bathrooms - b.Bathrooms
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "city":
		return strings.Compare(a.City, b.City)
	case "createdAt":
		return compareTimes(a, b)
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareTimes(a, b *Listing) int {
	switch {
	case a.CreatedAt.Before(b.CreatedAt):
		return -1
	case a.CreatedAt.After(b.CreatedAt):
		return 1
	default:
		return 0
	}
}
