package events

import (
	"context"
	"fmt"
	"time"

	"jobbots/services/processing/internal/config"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobsScrapedSubject  = "jobs.scraped"
	JobsAnalyzedSubject = "jobs.analyzed"
	QueueGroup          = "processing-service"
)

// Processor is what the handler feeds messages to.
type Processor interface {
	ProcessJob(ctx context.Context, rawData []byte) error
	ProcessAnalysis(ctx context.Context, rawData []byte) error
	Flush(ctx context.Context) error
	Run(ctx context.Context)
}

// Subscriber is the part of *nats.Conn the handler uses.
type Subscriber interface {
	QueueSubscribe(subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type Handler struct {
	logger    *zap.Logger
	nc        Subscriber
	tracer    trace.Tracer
	processor Processor
	timeout   time.Duration
	subs      []*nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, processor Processor, config *config.Config) *Handler {
	return newHandler(logger, nc, tracer, processor, config.ProcessingTimeout)
}

func newHandler(logger *zap.Logger, nc Subscriber, tracer trace.Tracer, processor Processor, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		logger:    logger,
		nc:        nc,
		tracer:    tracer,
		processor: processor,
		timeout:   timeout,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	routes := map[string]func(context.Context, []byte) error{
		JobsScrapedSubject:  h.processor.ProcessJob,
		JobsAnalyzedSubject: h.processor.ProcessAnalysis,
	}
	for subject, process := range routes {
		sub, err := h.nc.QueueSubscribe(subject, QueueGroup, h.handle(subject, process))
		if err != nil {
			h.unsubscribe()
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
		h.subs = append(h.subs, sub)
	}
	h.logger.Info("registered NATS subscriptions", zap.Int("count", len(h.subs)))

	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go h.processor.Run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			h.unsubscribe()
			cancel()
			return h.processor.Flush(ctx)
		},
	})

	return nil
}

func (h *Handler) unsubscribe() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			h.logger.Warn("failed to unsubscribe",
				zap.String("subject", sub.Subject),
				zap.Error(err))
		}
	}
	h.subs = nil
}

func (h *Handler) handle(subject string, process func(context.Context, []byte) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		ctx, span := h.tracer.Start(ctx, "handle "+subject)
		defer span.End()

		if err := process(ctx, msg.Data); err != nil {
			h.logger.Error("failed to process message",
				zap.Error(err),
				zap.String("subject", msg.Subject),
				zap.String("job_id", msg.Header.Get("Job-Id")),
			)
			return
		}

		h.logger.Debug("processed message",
			zap.String("subject", msg.Subject),
		)
	}
}
