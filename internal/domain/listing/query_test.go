package listing

import (
	"testing"
	"time"
)

func TestNormalizedDefaults(t *testing.T) {
	q := Query{}.Normalized()
	if q.Page != 1 || q.Limit != 10 {
		t.Fatalf("page/limit = %d/%d, want 1/10", q.Page, q.Limit)
	}
	if len(q.Sort) != 1 || q.Sort[0].Field != "createdAt" || !q.Sort[0].Desc {
		t.Fatalf("default sort = %+v", q.Sort)
	}
}

func TestNormalizedDropsUnknownFilters(t *testing.T) {
	q := Query{Filters: []Filter{
		{Field: "city", Values: []string{"Amsterdam"}},
		{Field: "hostId", Values: []string{"h-1"}},
		{Field: "guests", Op: OpGte},
	}}.Normalized()
	if len(q.Filters) != 1 {
		t.Fatalf("filters = %+v, want only city", q.Filters)
	}
	if q.Filters[0].Field != "city" || q.Filters[0].Op != OpEq {
		t.Fatalf("filter = %+v", q.Filters[0])
	}
}

func TestNormalizedCapsLimit(t *testing.T) {
	q := Query{Limit: 10000}.Normalized()
	if q.Limit != 100 {
		t.Fatalf("limit = %d, want 100", q.Limit)
	}
}

func TestSkip(t *testing.T) {
	q := Query{Page: 3, Limit: 10}
	if got := q.Skip(); got != 20 {
		t.Fatalf("skip = %d, want 20", got)
	}
}

func TestParseSort(t *testing.T) {
	keys := ParseSort("-pricePerNight, createdAt")
	if len(keys) != 2 {
		t.Fatalf("keys = %+v", keys)
	}
	if keys[0].Field != "pricePerNight" || !keys[0].Desc {
		t.Fatalf("first key = %+v", keys[0])
	}
	if keys[1].Field != "createdAt" || keys[1].Desc {
		t.Fatalf("second key = %+v", keys[1])
	}
	if got := ParseSort(""); got != nil {
		t.Fatalf("empty sort = %+v", got)
	}
}

func TestParseOp(t *testing.T) {
	if op, ok := ParseOp("LTE"); !ok || op != OpLte {
		t.Fatalf("ParseOp(LTE) = %v %v", op, ok)
	}
	if _, ok := ParseOp("regex"); ok {
		t.Fatal("unknown operator accepted")
	}
}

func catalogFixture() []*Listing {
	return []*Listing{
		{ID: "l-1", Host: "h-1", City: "Amsterdam", Country: "Netherlands", PricePerNight: 120, Guests: 4, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "l-2", Host: "h-1", City: "Utrecht", Country: "Netherlands", PricePerNight: 80, Guests: 2, CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "l-3", Host: "h-2", City: "Lisbon", Country: "Portugal", PricePerNight: 200, Guests: 6, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestFilterMatches(t *testing.T) {
	items := catalogFixture()
	lte := Filter{Field: "pricePerNight", Op: OpLte, Values: []string{"120"}}
	var matched []string
	for _, l := range items {
		if lte.Matches(l) {
			matched = append(matched, string(l.ID))
		}
	}
	if len(matched) != 2 {
		t.Fatalf("lte 120 matched %v", matched)
	}

	in := Filter{Field: "city", Op: OpIn, Values: []string{"Amsterdam", "Lisbon"}}
	count := 0
	for _, l := range items {
		if in.Matches(l) {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("in matched %d, want 2", count)
	}

	eq := Filter{Field: "guests", Op: OpEq, Values: []string{"4"}}
	if !eq.Matches(items[0]) || eq.Matches(items[1]) {
		t.Fatal("guests equality filter misbehaved")
	}
}

func TestSortListings(t *testing.T) {
	items := catalogFixture()
	SortListings(items, []SortKey{{Field: "pricePerNight", Desc: true}})
	if items[0].ID != "l-3" || items[2].ID != "l-2" {
		t.Fatalf("price desc order = %v %v %v", items[0].ID, items[1].ID, items[2].ID)
	}
	SortListings(items, []SortKey{{Field: "createdAt", Desc: true}})
	if items[0].ID != "l-3" || items[2].ID != "l-1" {
		t.Fatalf("createdAt desc order = %v %v %v", items[0].ID, items[1].ID, items[2].ID)
	}
}
