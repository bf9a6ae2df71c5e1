package messaging

import (
	"context"
	"encoding/json"
	"time"

	"jobbots/common/errors"
	"jobbots/common/telemetry"
	"jobbots/services/ingestion/internal/config"
	"jobbots/services/ingestion/internal/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobbots/ingestion/messaging")

const (
	JobsScrapedSubject = "jobs.scraped"

	// headers carried on every job message
	HeaderSource = "Job-Source"
	HeaderJobID  = "Job-Id"
)

// Conn is the part of *nats.Conn the publishers use.
type Conn interface {
	PublishMsg(m *nats.Msg) error
}

type Publisher interface {
	PublishJob(ctx context.Context, job *models.JobInfo) error
	// PublishJobs publishes each job and returns how many went out.
	PublishJobs(ctx context.Context, jobs []models.JobInfo) (int, error)
}

// Connect dials NATS with reconnects left unbounded.
func Connect(logger *zap.Logger, config *config.Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("jobbots-ingestion"),
		nats.Timeout(config.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(config.NATSURL, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}
	return conn, nil
}

type natsPublisher struct {
	conn   Conn
	logger *zap.Logger
}

func NewPublisher(conn Conn, logger *zap.Logger) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}
}

func (p *natsPublisher) PublishJob(ctx context.Context, job *models.JobInfo) error {
	_, span := tracer.Start(ctx, "PublishJob")
	defer span.End()

	data, err := job.MarshalBinary()
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling job", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", JobsScrapedSubject),
		telemetry.Int("message.size", len(data)),
	)

	msg := nats.NewMsg(JobsScrapedSubject)
	msg.Data = data
	msg.Header.Set(HeaderSource, job.Source)
	msg.Header.Set(HeaderJobID, job.JobID)
	msg.Header.Set(nats.MsgIdHdr, job.Source+":"+job.JobID)

	if err := p.conn.PublishMsg(msg); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish job",
			zap.String("job_id", job.JobID),
			zap.String("source", job.Source),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published job",
		zap.String("job_id", job.JobID),
		zap.String("subject", JobsScrapedSubject))
	return nil
}

func (p *natsPublisher) PublishJobs(ctx context.Context, jobs []models.JobInfo) (int, error) {
	for i := range jobs {
		if err := p.PublishJob(ctx, &jobs[i]); err != nil {
			return i, err
		}
	}
	return len(jobs), nil
}

// Decode reads a job published on JobsScrapedSubject.
func Decode(data []byte) (*models.JobInfo, error) {
	var job models.JobInfo
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, errors.InvalidInput("decoding job message", err)
	}
	return &job, nil
}
