package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
)

func TestTicketRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(docstore.NewMemory())

	created := time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)
	ticket := &domain.Ticket{
		Description: "La llum del bany parpelleja constantment.",
		Location:    domain.Label{Name: "Habitació 305"},
		RepairType:  domain.Label{Name: "Terrat", Custom: true},
		Status:      domain.TicketStatusOpen,
		Importance:  domain.ImportanceUrgent,
		CreatedAt:   created,
		UpdatedAt:   created,
		SuggestedTickets: []domain.SuggestedTicket{
			{TicketID: "TKT001", Description: "La llum del passadís parpelleja."},
		},
	}
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.ID == "" {
		t.Fatal("expected id to be assigned")
	}

	tickets, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
	got := tickets[0]
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created) {
		t.Errorf("timestamps not preserved: %v / %v", got.CreatedAt, got.UpdatedAt)
	}
	if got.Location != ticket.Location || got.RepairType != ticket.RepairType {
		t.Errorf("labels not preserved: %+v %+v", got.Location, got.RepairType)
	}
	if len(got.SuggestedTickets) != 1 || got.SuggestedTickets[0].TicketID != "TKT001" {
		t.Errorf("suggestions not preserved: %+v", got.SuggestedTickets)
	}
}

func TestTicketRepositoryUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(docstore.NewMemory())

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{Description: "Aixeta perd aigua", Status: domain.TicketStatusOpen, CreatedAt: created, UpdatedAt: created}
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}

	ticket.Status = domain.TicketStatusClosed
	ticket.CreatedAt = created.Add(time.Hour)
	ticket.UpdatedAt = created.Add(2 * time.Hour)
	if err := repo.Update(ctx, ticket); err != nil {
		t.Fatalf("update: %v", err)
	}

	tickets, _ := repo.List(ctx)
	if !tickets[0].CreatedAt.Equal(created) {
		t.Errorf("created_at rewritten: %v", tickets[0].CreatedAt)
	}
	if tickets[0].Status != domain.TicketStatusClosed {
		t.Errorf("status not updated: %s", tickets[0].Status)
	}
}

func TestTicketRepositoryFallsBackToStoreTimestamps(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	id, err := store.Insert(ctx, TicketsCollection, docstore.Fields{
		"description": "Registre antic sense dates",
		"location":    "Piscina",
		"status":      "OPEN",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	tickets, err := NewTicketRepository(store).List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	doc, _ := store.Get(ctx, TicketsCollection, id)
	if !tickets[0].CreatedAt.Equal(doc.CreatedAt) {
		t.Errorf("expected store created_at, got %v", tickets[0].CreatedAt)
	}
	if tickets[0].Location != (domain.Label{Name: "Piscina"}) {
		t.Errorf("expected bare string location to decode, got %+v", tickets[0].Location)
	}
}

func TestTicketRepositoryDeleteMissing(t *testing.T) {
	repo := NewTicketRepository(docstore.NewMemory())
	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReferenceRepositoryPerKind(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	locations := NewReferenceRepository(store, domain.ReferenceLocations)
	repairTypes := NewReferenceRepository(store, domain.ReferenceRepairTypes)

	item := &domain.ReferenceItem{Name: "Gimnàs"}
	if err := locations.Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := locations.Rename(ctx, item.ID, "Gimnàs Nou"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	items, _ := locations.List(ctx)
	if len(items) != 1 || items[0].Name != "Gimnàs Nou" {
		t.Fatalf("unexpected locations: %+v", items)
	}
	other, _ := repairTypes.List(ctx)
	if len(other) != 0 {
		t.Fatalf("repair types leaked locations: %+v", other)
	}
	if err := locations.Delete(ctx, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestTicketHistoryOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketHistoryRepository(docstore.NewMemory())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, change := range []domain.TicketChangeType{domain.ChangeTypeCreated, domain.ChangeTypeStatus} {
		entry := &domain.TicketHistory{TicketID: "t1", ChangeType: change, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Create(ctx, &domain.TicketHistory{TicketID: "t2", ChangeType: domain.ChangeTypeCreated, CreatedAt: base}); err != nil {
		t.Fatalf("create: %v", err)
	}

	entries, err := repo.ListByTicket(ctx, "t1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ChangeType != domain.ChangeTypeCreated || entries[1].ChangeType != domain.ChangeTypeStatus {
		t.Errorf("unexpected order: %+v", entries)
	}
}

func accessCodeBackends(t *testing.T) map[string]AccessCodeRepository {
	t.Helper()
	repos := map[string]AccessCodeRepository{"memory": NewMemoryAccessCodeRepository()}
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		t.Cleanup(func() { _ = client.Close() })
		key := "test:access_codes:" + t.Name()
		if err := client.Del(context.Background(), key).Err(); err != nil {
			t.Fatalf("reset redis: %v", err)
		}
		repos["redis"] = NewRedisAccessCodeRepository(client, key)
	}
	return repos
}

func TestAccessCodeRepository(t *testing.T) {
	for name, repo := range accessCodeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, code := range []string{"alpha123", "bravo456"} {
				added, err := repo.Add(ctx, code)
				if err != nil || !added {
					t.Fatalf("add %s: added=%v err=%v", code, added, err)
				}
			}
			if added, _ := repo.Add(ctx, "alpha123"); added {
				t.Error("duplicate add must report false")
			}

			codes, _ := repo.List(ctx)
			if len(codes) != 2 || codes[0] != "alpha123" {
				t.Errorf("expected issue order, got %v", codes)
			}

			if ok, _ := repo.Contains(ctx, "bravo456"); !ok {
				t.Error("expected code to be present")
			}
			if removed, _ := repo.Remove(ctx, "bravo456"); !removed {
				t.Error("expected removal")
			}
			if removed, _ := repo.Remove(ctx, "bravo456"); removed {
				t.Error("second removal must report false")
			}
			if ok, _ := repo.Contains(ctx, "bravo456"); ok {
				t.Error("revoked code still present")
			}
		})
	}
}
