package audit

import (
	"context"
	"log/slog"

	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
)

// LogPublisher writes score events to the structured log. It is used when no
// broker is configured.
type LogPublisher struct {
	logger  *slog.Logger
	metrics *Metrics
}

func NewLogPublisher(logger *slog.Logger, metrics *Metrics) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger, metrics: metrics}
}

func (p *LogPublisher) Publish(ctx context.Context, event ports.ScoreEvent) error {
	p.logger.InfoContext(ctx, "score event",
		"event_id", event.ID,
		"event_type", event.Type,
		"request_id", event.RequestID,
		"user_id", event.UserID,
		"credit_score", event.CreditScore,
		"neutral_fallbacks", event.NeutralFallbacks,
		"occurred_at", event.OccurredAt,
	)
	p.metrics.IncPublished(sinkLog)
	return nil
}
