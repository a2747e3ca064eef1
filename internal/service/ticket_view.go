package service

import (
	"sort"

	"github.com/hotelmend/ticket-service/internal/domain"
)

// TicketFilter restricts the displayed tickets. Each field is a set of
// accepted values; an empty set places no constraint on that dimension.
type TicketFilter struct {
	RepairTypes []string
	Locations   []string
	Statuses    []domain.TicketStatus
	Importances []domain.Importance
}

// DefaultTicketFilter hides closed tickets.
func DefaultTicketFilter() TicketFilter {
	return TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress},
	}
}

// IsEmpty reports whether no dimension is constrained.
func (f TicketFilter) IsEmpty() bool {
	return len(f.RepairTypes) == 0 && len(f.Locations) == 0 && len(f.Statuses) == 0 && len(f.Importances) == 0
}

// Matches reports whether the ticket passes every constrained dimension.
func (f TicketFilter) Matches(t domain.Ticket) bool {
	return contains(f.RepairTypes, t.RepairType.Name) &&
		contains(f.Locations, t.Location.Name) &&
		contains(f.Statuses, t.Status) &&
		contains(f.Importances, t.Importance)
}

func contains[T comparable](set []T, v T) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

// ApplyFilter returns the tickets that pass the filter, in input order. The
// input slice is not modified.
func ApplyFilter(tickets []domain.Ticket, filter TicketFilter) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortForDisplay returns a copy ordered by importance, then status, then
// newest creation first. Exact ties keep their input order.
func SortForDisplay(tickets []domain.Ticket) []domain.Ticket {
	out := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(out, func(i, j int) bool {
		return displayLess(out[i], out[j])
	})
	return out
}

func displayLess(a, b domain.Ticket) bool {
	if ra, rb := displayRank(a.Importance.Rank()), displayRank(b.Importance.Rank()); ra != rb {
		return ra < rb
	}
	if ra, rb := displayRank(a.Status.Rank()), displayRank(b.Status.Rank()); ra != rb {
		return ra < rb
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// displayRank sends unknown values (rank 0) after every known one.
func displayRank(rank int) int {
	if rank == 0 {
		return 1 << 8
	}
	return rank
}
