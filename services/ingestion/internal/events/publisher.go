package events

import (
	"context"
	"encoding/json"
	"time"

	"jobbots/common/errors"
	"jobbots/common/telemetry"
	"jobbots/services/ingestion/internal/messaging"
	"jobbots/services/ingestion/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SearchCompletedSubject = "jobs.search.completed"
	JobsAnalyzedSubject    = "jobs.analyzed"
)

var tracer = telemetry.GetTracer("jobbots/ingestion/events")

// SearchCompletedEvent summarises one scheduler run.
type SearchCompletedEvent struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Tasks      int            `json:"tasks"`
	Failed     int            `json:"failed"`
	Jobs       int            `json:"jobs"`
	Published  int            `json:"published"`
	ByPlatform map[string]int `json:"by_platform"`
}

type Publisher struct {
	conn   messaging.Conn
	logger *zap.Logger
}

func NewPublisher(conn messaging.Conn, logger *zap.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

func (p *Publisher) PublishSearchCompleted(ctx context.Context, event SearchCompletedEvent) error {
	_, span := tracer.Start(ctx, "PublishSearchCompleted")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling event", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", SearchCompletedSubject),
		telemetry.String("run.id", event.RunID),
		telemetry.Int("message.size", len(data)),
	)

	msg := nats.NewMsg(SearchCompletedSubject)
	msg.Data = data
	if err := p.conn.PublishMsg(msg); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish search completed event",
			zap.String("run_id", event.RunID),
			zap.Error(err))
		return errors.Unavailable("publishing event", err)
	}

	p.logger.Debug("published search completed event",
		zap.String("run_id", event.RunID),
		zap.Int("jobs", event.Jobs),
		zap.Int("failed", event.Failed))
	return nil
}

// AnalysisEvent is an analyzer result as stored downstream.
type AnalysisEvent struct {
	models.Analysis
	CreatedAt time.Time `json:"created_at"`
}

func (p *Publisher) PublishAnalysis(ctx context.Context, analysis *models.Analysis) error {
	_, span := tracer.Start(ctx, "PublishAnalysis")
	defer span.End()

	data, err := json.Marshal(AnalysisEvent{Analysis: *analysis, CreatedAt: time.Now().UTC()})
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling analysis", err)
	}

	msg := nats.NewMsg(JobsAnalyzedSubject)
	msg.Data = data
	msg.Header.Set(messaging.HeaderSource, analysis.Source)
	msg.Header.Set(messaging.HeaderJobID, analysis.JobID)
	if err := p.conn.PublishMsg(msg); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish analysis",
			zap.String("job_id", analysis.JobID),
			zap.Error(err))
		return errors.Unavailable("publishing analysis", err)
	}
	return nil
}
