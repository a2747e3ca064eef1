package service

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/observability"
	"github.com/hotelmend/ticket-service/internal/repository"
)

// Suggester proposes past tickets related to a description. It never fails:
// any problem yields an empty result.
type Suggester interface {
	Suggest(ctx context.Context, description string) []domain.SuggestedTicket
}

// TicketSource exposes the tickets a suggester searches.
type TicketSource interface {
	List() []domain.Ticket
}

// SuggestionService matches descriptions against past tickets by shared
// keywords. Results carry no ranking guarantee.
type SuggestionService struct {
	source     TicketSource
	cache      repository.SuggestionCache
	latency    time.Duration
	timeout    time.Duration
	maxResults int
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// SuggestionDependencies bundles collaborators for the suggester.
type SuggestionDependencies struct {
	Source     TicketSource
	Cache      repository.SuggestionCache
	Latency    time.Duration
	Timeout    time.Duration
	MaxResults int
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewSuggestionService constructs the service.
func NewSuggestionService(deps SuggestionDependencies) *SuggestionService {
	s := &SuggestionService{
		source:     deps.Source,
		cache:      deps.Cache,
		latency:    deps.Latency,
		timeout:    deps.Timeout,
		maxResults: deps.MaxResults,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
	if s.maxResults <= 0 {
		s.maxResults = 5
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Suggest returns up to maxResults related tickets, or an empty slice.
func (s *SuggestionService) Suggest(ctx context.Context, description string) []domain.SuggestedTicket {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return []domain.SuggestedTicket{}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	key := strings.Join(keywords(description), " ")
	if cached, ok := s.fromCache(ctx, key); ok {
		s.metrics.RecordSuggestion("cached")
		return cached
	}

	results := make(chan []domain.SuggestedTicket, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("suggestion lookup panicked", zap.Any("panic", r))
				results <- nil
			}
		}()
		results <- s.lookup(ctx, description)
	}()

	select {
	case found := <-results:
		if found == nil {
			s.metrics.RecordSuggestion("error")
			return []domain.SuggestedTicket{}
		}
		if len(found) == 0 {
			s.metrics.RecordSuggestion("empty")
		} else {
			s.metrics.RecordSuggestion("hit")
		}
		s.toCache(ctx, key, found)
		return found
	case <-ctx.Done():
		s.logger.Warn("suggestion lookup abandoned", zap.Error(ctx.Err()))
		s.metrics.RecordSuggestion("timeout")
		return []domain.SuggestedTicket{}
	}
}

func (s *SuggestionService) lookup(ctx context.Context, description string) []domain.SuggestedTicket {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return []domain.SuggestedTicket{}
		}
	}
	if s.source == nil {
		return []domain.SuggestedTicket{}
	}

	wanted := keywords(description)
	type scored struct {
		ticket domain.Ticket
		score  int
	}
	var candidates []scored
	for _, t := range s.source.List() {
		have := make(map[string]struct{})
		for _, k := range keywords(t.Description) {
			have[k] = struct{}{}
		}
		score := 0
		for _, k := range wanted {
			if _, ok := have[k]; ok {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{ticket: t, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].ticket.CreatedAt.After(candidates[j].ticket.CreatedAt)
	})

	out := make([]domain.SuggestedTicket, 0, s.maxResults)
	for _, c := range candidates {
		if len(out) == s.maxResults {
			break
		}
		out = append(out, domain.SuggestedTicket{TicketID: c.ticket.ID, Description: c.ticket.Description})
	}
	return out
}

func (s *SuggestionService) fromCache(ctx context.Context, key string) ([]domain.SuggestedTicket, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("suggestion cache read failed", zap.Error(err))
		return nil, false
	}
	return cached, ok
}

func (s *SuggestionService) toCache(ctx context.Context, key string, found []domain.SuggestedTicket) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, found); err != nil {
		s.logger.Warn("suggestion cache write failed", zap.Error(err))
	}
}

var stopWords = map[string]struct{}{
	// ca
	"està": {}, "estan": {}, "molt": {}, "sembla": {}, "quan": {}, "però": {}, "dels": {},
	"aquest": {}, "aquesta": {}, "constantment": {}, "necessita": {},
	// es
	"esta": {}, "pero": {}, "para": {}, "como": {}, "desde": {},
	// en
	"with": {}, "this": {}, "that": {}, "from": {}, "there": {}, "have": {},
}

// keywords returns the distinct, lowercased words of at least four letters,
// in first-seen order.
func keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 4 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
