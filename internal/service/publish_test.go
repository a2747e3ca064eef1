package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/hotelmend/ticket-service/internal/auth"
	"github.com/hotelmend/ticket-service/internal/config"
	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/events"
	"github.com/hotelmend/ticket-service/internal/persistence/docstore"
	"github.com/hotelmend/ticket-service/internal/repository"
)

func failingDispatcher() events.Dispatcher {
	d := events.NewInMemoryDispatcher()
	for _, t := range events.AllEventTypes {
		d.Subscribe(t, func(context.Context, events.Event) error {
			return errors.New("sink unavailable")
		})
	}
	return d
}

func TestDispatchFailuresAreLoggedNotReturned(t *testing.T) {
	ctx := context.Background()

	t.Run("reference", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		repo := repository.NewReferenceRepository(docstore.NewMemory(), domain.ReferenceLocations)
		svc := NewReferenceService(repo, failingDispatcher(), zap.New(core))

		if _, err := svc.Add(ctx, "Terrassa"); err != nil {
			t.Fatalf("add: %v", err)
		}
		if logs.FilterMessage("event handlers failed").Len() != 1 {
			t.Fatalf("expected one dispatch warning, got %v", logs.All())
		}
	})

	t.Run("access", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		svc, err := NewAccessService(config.AuthConfig{BcryptCost: bcrypt.MinCost, AccessSecret: "hotel-secret"},
			AccessDependencies{
				CodeRepo:   repository.NewMemoryAccessCodeRepository(),
				Tokens:     auth.NewTokenManager("test-signing-key", 0),
				Dispatcher: failingDispatcher(),
				Logger:     zap.New(core),
			})
		if err != nil {
			t.Fatalf("new access service: %v", err)
		}

		if _, _, err := svc.IssueCode(ctx, "guest-01"); err != nil {
			t.Fatalf("issue: %v", err)
		}
		if err := svc.RevokeCode(ctx, "guest-01"); err != nil {
			t.Fatalf("revoke: %v", err)
		}
		if logs.FilterMessage("event handlers failed").Len() != 2 {
			t.Fatalf("expected two dispatch warnings, got %v", logs.All())
		}
	})
}
