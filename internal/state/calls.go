package state

import (
	"slices"

	"github.com/saravenpi/switchboard/internal/models"
)

// CallBook is the local list of calls believed to be ongoing. It is a
// best-effort cache, not authoritative: statuses are the snapshot
// returned when each call was placed.
type CallBook struct {
	Calls []models.Call
}

func (b CallBook) Placed(call models.Call) CallBook {
	b.Calls = append(slices.Clone(b.Calls), call)
	return b
}

// HungUp removes sid; callers apply it only after the backend confirmed.
func (b CallBook) HungUp(sid string) CallBook {
	b.Calls = slices.DeleteFunc(slices.Clone(b.Calls), func(c models.Call) bool {
		return c.SID == sid
	})
	return b
}

// Reconcile replaces the local list with an authoritative snapshot,
// keeping local order for calls present in both.
func (b CallBook) Reconcile(snapshot []models.Call) CallBook {
	fresh := make(map[string]models.Call, len(snapshot))
	for _, c := range snapshot {
		fresh[c.SID] = c
	}

	out := make([]models.Call, 0, len(snapshot))
	for _, c := range b.Calls {
		if f, ok := fresh[c.SID]; ok {
			out = append(out, f)
			delete(fresh, c.SID)
		}
	}
	for _, c := range snapshot {
		if _, ok := fresh[c.SID]; ok {
			out = append(out, c)
		}
	}
	b.Calls = out
	return b
}

func (b CallBook) Find(sid string) (models.Call, bool) {
	for _, c := range b.Calls {
		if c.SID == sid {
			return c, true
		}
	}
	return models.Call{}, false
}
