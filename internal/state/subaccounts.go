// Package state holds the dashboard's view state as plain values. Every
// transition returns a new value and leaves the receiver untouched.
package state

import (
	"maps"
	"slices"

	"github.com/saravenpi/switchboard/internal/models"
)

const DefaultPageSize = 10

type Subaccounts struct {
	Items       []models.Subaccount
	Badges      map[string]models.Badges
	Page        int
	PageSize    int
	MissingOnly bool
	Loading     bool
	Err         string
}

func NewSubaccounts(pageSize int) Subaccounts {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Subaccounts{
		Badges:   map[string]models.Badges{},
		Page:     1,
		PageSize: pageSize,
	}
}

func (s Subaccounts) Fetching() Subaccounts {
	s.Loading = true
	s.Err = ""
	return s
}

// Loaded replaces the collection. Known badges are kept.
func (s Subaccounts) Loaded(items []models.Subaccount) Subaccounts {
	s.Items = slices.Clone(items)
	s.Loading = false
	s.Err = ""
	return s.clampPage()
}

func (s Subaccounts) Failed(message string) Subaccounts {
	s.Loading = false
	s.Err = message
	return s
}

// Errored records a failed mutation. A fetch still in progress keeps
// loading.
func (s Subaccounts) Errored(message string) Subaccounts {
	s.Err = message
	return s
}

func (s Subaccounts) Added(sub models.Subaccount) Subaccounts {
	s.Items = append(slices.Clone(s.Items), sub)
	s.Err = ""
	return s
}

// Updated replaces the subaccount with the same sid, keeping its position.
func (s Subaccounts) Updated(sub models.Subaccount) Subaccounts {
	items := slices.Clone(s.Items)
	for i := range items {
		if items[i].SID == sub.SID {
			items[i] = sub
		}
	}
	s.Items = items
	s.Err = ""
	return s
}

func (s Subaccounts) Removed(sid string) Subaccounts {
	s.Items = slices.DeleteFunc(slices.Clone(s.Items), func(sub models.Subaccount) bool {
		return sub.SID == sid
	})
	if _, ok := s.Badges[sid]; ok {
		badges := maps.Clone(s.Badges)
		delete(badges, sid)
		s.Badges = badges
	}
	s.Err = ""
	return s.clampPage()
}

// WithBadges merges one badge result. Merges are keyed by sid, so their
// arrival order does not matter.
func (s Subaccounts) WithBadges(sid string, b models.Badges) Subaccounts {
	badges := maps.Clone(s.Badges)
	if badges == nil {
		badges = map[string]models.Badges{}
	}
	badges[sid] = b
	s.Badges = badges
	return s
}

// ClearBadges drops every known badge so the next enrichment pass covers
// the whole list again.
func (s Subaccounts) ClearBadges() Subaccounts {
	s.Badges = map[string]models.Badges{}
	return s.clampPage()
}

func (s Subaccounts) ToggleMissingOnly() Subaccounts {
	s.MissingOnly = !s.MissingOnly
	s.Page = 1
	return s
}

func (s Subaccounts) GoToPage(page int) Subaccounts {
	s.Page = page
	return s.clampPage()
}

func (s Subaccounts) NextPage() Subaccounts { return s.GoToPage(s.Page + 1) }
func (s Subaccounts) PrevPage() Subaccounts { return s.GoToPage(s.Page - 1) }

func (s Subaccounts) Rows() []Row {
	return Merge(s.Items, s.Badges)
}

func (s Subaccounts) View() Page {
	return Visible(s.Rows(), s.MissingOnly, s.Page, s.PageSize)
}

// EnrichmentOrder lists the sids still lacking badges: the visible page
// first, then the rest in list order.
func (s Subaccounts) EnrichmentOrder() []string {
	seen := map[string]bool{}
	order := make([]string, 0, len(s.Items))
	add := func(sid string) {
		if seen[sid] {
			return
		}
		seen[sid] = true
		if _, ok := s.Badges[sid]; ok {
			return
		}
		order = append(order, sid)
	}
	for _, r := range s.View().Rows {
		add(r.SID)
	}
	for _, sub := range s.Items {
		add(sub.SID)
	}
	return order
}

func (s Subaccounts) Find(sid string) (models.Subaccount, bool) {
	for _, sub := range s.Items {
		if sub.SID == sid {
			return sub, true
		}
	}
	return models.Subaccount{}, false
}

func (s Subaccounts) clampPage() Subaccounts {
	total := TotalPages(s.filteredLen(), s.PageSize)
	s.Page = max(1, min(s.Page, max(1, total)))
	return s
}

func (s Subaccounts) filteredLen() int {
	if !s.MissingOnly {
		return len(s.Items)
	}
	return len(MissingEmergencyOnly(s.Rows()))
}
