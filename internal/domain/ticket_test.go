package domain

import "testing"

func TestStatusRank(t *testing.T) {
	tests := []struct {
		status TicketStatus
		rank   int
		valid  bool
	}{
		{TicketStatusOpen, 1, true},
		{TicketStatusInProgress, 2, true},
		{TicketStatusClosed, 3, true},
		{TicketStatus("RESOLVED"), 0, false},
		{TicketStatus(""), 0, false},
	}
	for _, tt := range tests {
		if got := tt.status.Rank(); got != tt.rank {
			t.Errorf("%q.Rank() = %d, want %d", tt.status, got, tt.rank)
		}
		if got := tt.status.IsValid(); got != tt.valid {
			t.Errorf("%q.IsValid() = %v, want %v", tt.status, got, tt.valid)
		}
	}
}

func TestImportanceRank(t *testing.T) {
	if !(ImportanceUrgent.Rank() < ImportanceImportant.Rank() && ImportanceImportant.Rank() < ImportanceLow.Rank()) {
		t.Fatal("expected Urgent < Important < Low")
	}
	if Importance("urgent").IsValid() {
		t.Error("importance values are case-sensitive")
	}
	if !DefaultImportance.IsValid() {
		t.Error("default importance must be valid")
	}
}

func TestCloneDoesNotShareSuggestions(t *testing.T) {
	orig := Ticket{ID: "1", SuggestedTickets: []SuggestedTicket{{TicketID: "a", Description: "x"}}}
	cp := orig.Clone()
	cp.SuggestedTickets[0].TicketID = "b"
	if orig.SuggestedTickets[0].TicketID != "a" {
		t.Fatal("clone shares suggestion slice with original")
	}
}
