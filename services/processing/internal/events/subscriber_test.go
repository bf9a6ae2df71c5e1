package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSubscriber struct {
	handlers map[string]nats.MsgHandler
	queues   map[string]string
	failOn   string
}

func (s *fakeSubscriber) QueueSubscribe(subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error) {
	if subject == s.failOn {
		return nil, errors.New("not connected")
	}
	s.handlers[subject] = cb
	s.queues[subject] = queue
	return &nats.Subscription{Subject: subject, Queue: queue}, nil
}

type fakeProcessor struct {
	mu       sync.Mutex
	jobs     [][]byte
	analyses [][]byte
	flushed  int
	deadline bool
	fail     error
}

func (p *fakeProcessor) ProcessJob(ctx context.Context, rawData []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, p.deadline = ctx.Deadline()
	p.jobs = append(p.jobs, rawData)
	return p.fail
}

func (p *fakeProcessor) ProcessAnalysis(_ context.Context, rawData []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analyses = append(p.analyses, rawData)
	return p.fail
}

func (p *fakeProcessor) Flush(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushed++
	return nil
}

func (p *fakeProcessor) Run(ctx context.Context) {
	<-ctx.Done()
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: map[string]nats.MsgHandler{}, queues: map[string]string{}}
}

func TestRegisterSubscriptionsRoutesMessages(t *testing.T) {
	sub := newFakeSubscriber()
	proc := &fakeProcessor{}
	h := newHandler(zap.NewNop(), sub, noop.NewTracerProvider().Tracer("test"), proc, time.Second)

	lc := fxtest.NewLifecycle(t)
	require.NoError(t, h.RegisterSubscriptions(lc))
	assert.Equal(t, QueueGroup, sub.queues[JobsScrapedSubject])
	assert.Equal(t, QueueGroup, sub.queues[JobsAnalyzedSubject])

	lc.RequireStart()

	sub.handlers[JobsScrapedSubject](&nats.Msg{Subject: JobsScrapedSubject, Data: []byte(`{"job_id":"1"}`)})
	sub.handlers[JobsAnalyzedSubject](&nats.Msg{Subject: JobsAnalyzedSubject, Data: []byte(`{"job_id":"2"}`)})

	assert.Len(t, proc.jobs, 1)
	assert.Len(t, proc.analyses, 1)
	assert.True(t, proc.deadline)

	lc.RequireStop()
	assert.Equal(t, 1, proc.flushed)
}

func TestHandlerLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sub := newFakeSubscriber()
	proc := &fakeProcessor{fail: errors.New("bad payload")}
	h := newHandler(zap.New(core), sub, noop.NewTracerProvider().Tracer("test"), proc, time.Second)

	require.NoError(t, h.RegisterSubscriptions(fxtest.NewLifecycle(t)))

	msg := nats.NewMsg(JobsScrapedSubject)
	msg.Header.Set("Job-Id", "42")
	msg.Data = []byte("{")
	sub.handlers[JobsScrapedSubject](msg)

	failures := logs.FilterMessage("failed to process message").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "42", failures[0].ContextMap()["job_id"])
}

func TestRegisterSubscriptionsFails(t *testing.T) {
	sub := newFakeSubscriber()
	sub.failOn = JobsAnalyzedSubject
	h := newHandler(zap.NewNop(), sub, noop.NewTracerProvider().Tracer("test"), &fakeProcessor{}, time.Second)

	err := h.RegisterSubscriptions(fxtest.NewLifecycle(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobsAnalyzedSubject)
}
