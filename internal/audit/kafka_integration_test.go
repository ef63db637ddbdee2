//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
	"github.com/aadya-khanna/OpenScore/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pub, err := NewKafkaPublisher(s.redpanda.Brokers, "score-events-test")
	s.Require().NoError(err)
	defer func() { _ = pub.Close(context.Background()) }()

	s.Require().NoError(pub.Ping(ctx))
	s.Require().NoError(pub.EnsureTopic(ctx, 1, 1))
	// second call hits TopicAlreadyExists
	s.Require().NoError(pub.EnsureTopic(ctx, 1, 1))

	sent := ports.ScoreEvent{
		ID:          "evt-1",
		Type:        ports.EventScoreCalculated,
		UserID:      "user-1",
		CreditScore: 72,
		OccurredAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(pub.Publish(ctx, sent))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(pub.Topic()),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	rec := records[0]
	s.Equal("user-1", string(rec.Key))
	s.Require().Len(rec.Headers, 1)
	s.Equal(ports.EventScoreCalculated, string(rec.Headers[0].Value))

	got, err := DecodeEvent(rec.Value)
	s.Require().NoError(err)
	s.Equal(sent.ID, got.ID)
	s.Equal(72, got.CreditScore)
	s.True(sent.OccurredAt.Equal(got.OccurredAt))
}
