package state

import (
	"slices"

	"github.com/saravenpi/switchboard/internal/models"
)

// Row is a subaccount merged with whatever badges are known for it.
type Row struct {
	models.Subaccount
	Badges models.Badges
}

// Page is one visible slice of the subaccount list.
type Page struct {
	Rows       []Row
	Number     int
	TotalPages int
	Total      int
}

// Merge joins subaccounts with the badge store by sid. Every subaccount
// yields a row; a missing badge entry leaves the badges unknown.
func Merge(subs []models.Subaccount, badges map[string]models.Badges) []Row {
	rows := make([]Row, len(subs))
	for i, sub := range subs {
		rows[i] = Row{Subaccount: sub, Badges: badges[sub.SID]}
	}
	return rows
}

// MissingEmergencyOnly keeps rows whose registration is known to be false.
func MissingEmergencyOnly(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if reg := r.Badges.AllEmergenciesRegistered; reg != nil && !*reg {
			out = append(out, r)
		}
	}
	return out
}

func registrationRank(r Row) int {
	switch reg := r.Badges.AllEmergenciesRegistered; {
	case reg == nil:
		return 2
	case !*reg:
		return 0
	default:
		return 1
	}
}

// SortByEmergency orders missing registrations first, then registered,
// then unknown, keeping the input order within each group.
func SortByEmergency(rows []Row) []Row {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b Row) int {
		return registrationRank(a) - registrationRank(b)
	})
	return out
}

// TotalPages is zero for an empty list.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns rows [(page-1)*size, page*size). Pages past the end
// are empty.
func Paginate(rows []Row, page, size int) Page {
	p := Page{
		Number:     page,
		Total:      len(rows),
		TotalPages: TotalPages(len(rows), size),
	}
	if page < 1 || size <= 0 {
		p.Rows = []Row{}
		return p
	}
	start := (page - 1) * size
	if start >= len(rows) {
		p.Rows = []Row{}
		return p
	}
	end := min(start+size, len(rows))
	p.Rows = slices.Clone(rows[start:end])
	return p
}

// Visible applies filter, sort and pagination in that order.
func Visible(rows []Row, missingOnly bool, page, size int) Page {
	if missingOnly {
		rows = MissingEmergencyOnly(rows)
	}
	return Paginate(SortByEmergency(rows), page, size)
}
