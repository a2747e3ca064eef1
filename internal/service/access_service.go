package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/auth"
	"github.com/hotelmend/ticket-service/internal/config"
	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/events"
	"github.com/hotelmend/ticket-service/internal/repository"
	apperrors "github.com/hotelmend/ticket-service/pkg/util/errorutil"
)

const (
	generatedCodeLength = 8
	codeAlphabet        = "0123456789abcdefghijklmnopqrstuvwxyz"
	maxIssueAttempts    = 16
)

// AccessService gates access with a configured secret plus a registry of
// issued access codes, and issues session tokens on successful login.
type AccessService struct {
	codes          repository.AccessCodeRepository
	tokens         *auth.TokenManager
	dispatcher     events.Dispatcher
	logger         *zap.Logger
	accessHash     string
	superadminHash string
	random         io.Reader
}

// AccessDependencies bundles collaborators for the access service.
type AccessDependencies struct {
	CodeRepo   repository.AccessCodeRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAccessService hashes the configured secrets. An empty secret keeps the
// corresponding login closed.
func NewAccessService(cfg config.AuthConfig, deps AccessDependencies) (*AccessService, error) {
	s := &AccessService{
		codes:      deps.CodeRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		random:     rand.Reader,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	var err error
	if cfg.AccessSecret != "" {
		if s.accessHash, err = auth.HashPassword(cfg.AccessSecret, cfg.BcryptCost); err != nil {
			return nil, fmt.Errorf("hash access secret: %w", err)
		}
	}
	if cfg.SuperadminSecret != "" {
		if s.superadminHash, err = auth.HashPassword(cfg.SuperadminSecret, cfg.BcryptCost); err != nil {
			return nil, fmt.Errorf("hash superadmin secret: %w", err)
		}
	}
	return s, nil
}

// ConfigProblems lists missing secrets, for readiness reporting.
func (s *AccessService) ConfigProblems() []string {
	var problems []string
	if s.accessHash == "" {
		problems = append(problems, "ACCESS_SECRET not configured")
	}
	if s.superadminHash == "" {
		problems = append(problems, "SUPERADMIN_SECRET not configured")
	}
	if !s.signingConfigured() {
		problems = append(problems, "AUTH_JWT_SECRET not configured")
	}
	return problems
}

// ListCodes returns issued codes in issue order.
func (s *AccessService) ListCodes(ctx context.Context) ([]string, error) {
	codes, err := s.codes.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}

// IssueCode registers explicit when given, otherwise a fresh random code.
// It reports whether the code was generated.
func (s *AccessService) IssueCode(ctx context.Context, explicit string) (string, bool, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		added, err := s.codes.Add(ctx, explicit)
		if err != nil {
			return "", false, apperrors.NewStoreError(err)
		}
		if !added {
			return "", false, apperrors.NewConflict("access code already exists", nil)
		}
		s.publish(ctx, events.EventAccessCodeIssued, false)
		return explicit, false, nil
	}

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return "", false, apperrors.NewInternalError(err)
		}
		added, err := s.codes.Add(ctx, code)
		if err != nil {
			return "", false, apperrors.NewStoreError(err)
		}
		if added {
			s.publish(ctx, events.EventAccessCodeIssued, true)
			return code, true, nil
		}
	}
	return "", false, apperrors.NewInternalError(fmt.Errorf("no unique code after %d attempts", maxIssueAttempts))
}

// RevokeCode removes a code by exact value.
func (s *AccessService) RevokeCode(ctx context.Context, code string) error {
	if code == "" {
		return apperrors.NewFieldValidationError(map[string]string{"password": "required"})
	}
	removed, err := s.codes.Remove(ctx, code)
	if err != nil {
		return apperrors.NewStoreError(err)
	}
	if !removed {
		return apperrors.NewNotFound("access code", nil)
	}
	s.publish(ctx, events.EventAccessCodeRevoked, false)
	return nil
}

// Check reports whether submitted grants regular access: it equals the
// configured access secret or is an issued code. Without a configured
// secret every check fails with a configuration error.
func (s *AccessService) Check(ctx context.Context, submitted string) (bool, error) {
	if s.accessHash == "" {
		return false, apperrors.NewConfigError("access secret is not configured")
	}
	if submitted == "" {
		return false, nil
	}
	if auth.ComparePassword(s.accessHash, submitted) == nil {
		return true, nil
	}
	ok, err := s.codes.Contains(ctx, submitted)
	if err != nil {
		return false, apperrors.NewStoreError(err)
	}
	return ok, nil
}

// Login exchanges a valid access code for a user session token.
func (s *AccessService) Login(ctx context.Context, code string) (string, time.Time, error) {
	if !s.signingConfigured() {
		return "", time.Time{}, apperrors.NewConfigError("session signing key is not configured")
	}
	ok, err := s.Check(ctx, code)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid access code")
	}
	return s.issueToken(domain.RoleUser)
}

// AdminLogin exchanges the superadmin secret for an admin session token.
func (s *AccessService) AdminLogin(_ context.Context, password string) (string, time.Time, error) {
	if s.superadminHash == "" {
		return "", time.Time{}, apperrors.NewConfigError("superadmin secret is not configured")
	}
	if !s.signingConfigured() {
		return "", time.Time{}, apperrors.NewConfigError("session signing key is not configured")
	}
	if password == "" || auth.ComparePassword(s.superadminHash, password) != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid superadmin password")
	}
	return s.issueToken(domain.RoleSuperadmin)
}

func (s *AccessService) signingConfigured() bool {
	return s.tokens != nil && s.tokens.Configured()
}

func (s *AccessService) issueToken(role domain.Role) (string, time.Time, error) {
	token, exp, err := s.tokens.GenerateToken(role)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, exp, nil
}

// generateCode draws an unbiased lowercase base36 code.
func (s *AccessService) generateCode() (string, error) {
	const limit = 256 - 256%len(codeAlphabet)
	out := make([]byte, 0, generatedCodeLength)
	buf := make([]byte, generatedCodeLength*2)
	for len(out) < generatedCodeLength {
		if _, err := io.ReadFull(s.random, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == generatedCodeLength {
				break
			}
		}
	}
	return string(out), nil
}

func (s *AccessService) publish(ctx context.Context, eventType events.EventType, generated bool) {
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   events.AccessCodePayload{Generated: generated},
	})
}
