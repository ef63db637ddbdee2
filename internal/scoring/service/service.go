package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
	"github.com/aadya-khanna/OpenScore/internal/scoring/metrics"
	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service computes credit scores from gathered user data.
type Service struct {
	documents  ports.DocumentSource
	financial  ports.FinancialData
	store      ports.ScoreStore
	publisher  ports.EventPublisher
	summarizer ports.Summarizer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	timeout    time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStore enables score history.
func WithStore(store ports.ScoreStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithPublisher enables score events.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithSummarizer enables summary generation.
func WithSummarizer(sum ports.Summarizer) Option {
	return func(s *Service) {
		s.summarizer = sum
	}
}

// WithTimeout bounds input gathering.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a scoring service. Documents and financial data are required.
func New(documents ports.DocumentSource, financial ports.FinancialData, opts ...Option) (*Service, error) {
	if documents == nil {
		return nil, fmt.Errorf("document source is required")
	}
	if financial == nil {
		return nil, fmt.Errorf("financial data source is required")
	}

	s := &Service{
		documents: documents,
		financial: financial,
		logger:    slog.Default(),
		tracer:    otel.Tracer("github.com/aadya-khanna/OpenScore/internal/scoring/service"),
		timeout:   defaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Calculate gathers the user's inputs, computes the score, stores it in the
// history and publishes a score_calculated event. Publishing is best effort.
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "scoring.Calculate")
	defer span.End()
	start := time.Now()
	defer func() {
		s.metrics.ObserveCalculateLatency(time.Since(start))
	}()

	ev, err := s.evaluate(ctx, req)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}

	result := &Result{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		Breakdown:        ev.Result,
		Documents:        ev.Documents,
		NeutralFallbacks: ev.NeutralFallbacks(),
		ComputedAt:       s.now(),
	}
	span.SetAttributes(
		attribute.Int("credit_score", result.Breakdown.CreditScore),
		attribute.Int("neutral_fallbacks", len(result.NeutralFallbacks)),
	)

	s.metrics.ObserveCreditScore(result.Breakdown.CreditScore)
	for _, name := range result.NeutralFallbacks {
		s.metrics.IncrementNeutralFallback(name)
	}

	if s.store != nil {
		err := s.store.Save(ctx, ports.ScoreRecord{
			ID:          result.ID,
			UserID:      result.UserID,
			CreditScore: result.Breakdown.CreditScore,
			Breakdown:   result.Breakdown,
			ComputedAt:  result.ComputedAt,
		})
		if err != nil {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to save score")
			s.fail(span, err)
			return nil, err
		}
	}

	s.publish(ctx, result)

	s.logger.InfoContext(ctx, "credit score calculated",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", req.UserID,
		"score_id", result.ID,
		"credit_score", result.Breakdown.CreditScore,
		"neutral_fallbacks", result.NeutralFallbacks,
	)
	return result, nil
}

// evaluate gathers inputs and runs the scoring pipeline without side effects.
func (s *Service) evaluate(ctx context.Context, req CalculateRequest) (*scoring.Evaluation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	in, err := s.gatherInputs(ctx, req.UserID)
	if err != nil {
		return nil, s.translateGatherError(ctx, req.UserID, err)
	}

	ev := scoring.Evaluate(scoring.Input{
		Transactions:        in.Transactions,
		Accounts:            in.Accounts,
		Investments:         in.Investments,
		EducationScore:      req.EducationScore,
		IncomeStatementText: in.IncomeStatementText,
		BalanceSheetText:    in.BalanceSheetText,
	})
	return &ev, nil
}

// DocumentScores returns the display values of the uploaded statements.
func (s *Service) DocumentScores(ctx context.Context, userID string) (*scoring.DisplayValues, error) {
	report, err := s.DocumentMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}
	display := report.Components.Display()
	return &display, nil
}

// DocumentMetrics returns the raw metrics and component scores of the
// uploaded statements.
func (s *Service) DocumentMetrics(ctx context.Context, userID string) (*DocumentReport, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	in, err := s.gatherDocumentsOnly(ctx, userID)
	if err != nil {
		return nil, s.translateGatherError(ctx, userID, err)
	}

	income := scoring.AnalyzeIncomeStatement(in.IncomeStatementText)
	balance := scoring.AnalyzeBalanceSheet(in.BalanceSheetText)
	return &DocumentReport{
		Income:     income,
		Balance:    balance,
		Components: scoring.ScoreDocuments(income, balance),
	}, nil
}

// History lists the user's stored scores, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]ports.ScoreRecord, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if s.store == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "score history is not enabled")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list score history")
	}
	return records, nil
}

// Summarize computes a fresh score and asks the summarizer to explain it.
// The score is not stored.
func (s *Service) Summarize(ctx context.Context, req CalculateRequest) (*SummaryResult, error) {
	if s.summarizer == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "summary generation is not enabled")
	}

	ev, err := s.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	text, err := s.summarizer.Summarize(ctx, ports.SummaryInput{
		Breakdown: ev.Result,
		Documents: ev.Documents,
		Income:    ev.Income,
		Balance:   ev.Balance,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "summary generation failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", req.UserID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "summary generation failed")
	}

	return &SummaryResult{
		Summary:     text,
		Model:       s.summarizer.Model(),
		CreditScore: ev.Result.CreditScore,
	}, nil
}

func (s *Service) publish(ctx context.Context, result *Result) {
	if s.publisher == nil {
		return
	}
	event := ports.ScoreEvent{
		ID:               uuid.NewString(),
		Type:             ports.EventScoreCalculated,
		UserID:           result.UserID,
		RequestID:        requestcontext.RequestID(ctx),
		CreditScore:      result.Breakdown.CreditScore,
		NeutralFallbacks: result.NeutralFallbacks,
		OccurredAt:       result.ComputedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish score event",
			"request_id", event.RequestID,
			"user_id", event.UserID,
			"score_id", result.ID,
			"error", err,
		)
	}
}

// translateGatherError maps collaborator failures to domain errors.
func (s *Service) translateGatherError(ctx context.Context, userID string, err error) error {
	var missing *scoring.MissingDocumentError
	switch {
	case errors.As(err, &missing):
		return dErrors.Wrap(err, dErrors.CodeMissingDocument, fmt.Sprintf("%s not uploaded", missing.Kind))
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "timed out gathering scoring inputs")
	case errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "request cancelled")
	}

	s.logger.ErrorContext(ctx, "failed to gather scoring inputs",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather scoring inputs")
}

func (s *Service) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	s.metrics.IncrementFailure(string(dErrors.CodeOf(err)))
}
