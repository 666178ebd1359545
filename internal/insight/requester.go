// Package insight turns the last 30 days of journal records into a short
// coaching summary from a text-generation service.
//
// The Requester never fails: every path ends in an Outcome whose Text can be
// shown to the user as is. Kind tells callers which path was taken and Err
// carries the underlying failure, if any.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/logging"
	"github.com/fyrsmithlabs/leaderlog/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/leaderlog/internal/insight"

// Messages shown in place of a generated summary.
const (
	NotConfiguredMessage = "API Key not configured. Please add your Gemini API key to the environment variables to generate insights."
	NoDataMessage        = "Please add some entries to generate insights."
	ServiceErrorMessage  = "An error occurred while communicating with the AI service."
	EmptyResponseMessage = "Could not generate insights at this time."
)

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 60 * time.Second

var (
	// ErrEmptyResponse indicates the service answered with no text.
	ErrEmptyResponse = errors.New("empty response from text generator")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("text generation timed out")

	// ErrRateLimited indicates the request could not be paced within its timeout.
	ErrRateLimited = errors.New("insight requests too frequent")
)

// Kind says which path produced an Outcome.
type Kind string

const (
	KindGenerated     Kind = "generated"
	KindNotConfigured Kind = "not_configured"
	KindNoData        Kind = "no_data"
	KindServiceError  Kind = "service_error"
)

// Outcome is the result of one insight request.
type Outcome struct {
	Text string
	Kind Kind
	Err  error
}

// Generated reports whether Text came from the service.
func (o Outcome) Generated() bool {
	return o.Kind == KindGenerated
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Scrubber removes sensitive text before a prompt is built.
// *redact.Redactor implements it.
type Scrubber interface {
	Redact(text string) (string, int, error)
}

// Requester filters records, builds the prompt and calls the Generator.
type Requester struct {
	gen      Generator
	scrubber Scrubber
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *logging.Logger

	tracer   trace.Tracer
	requests metric.Int64Counter
}

// Option configures a Requester.
type Option func(*Requester)

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(r *Requester) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Requester) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMinInterval allows at most one request per d. A request made sooner
// waits, within its timeout, for its turn. Non-positive values disable pacing.
func WithMinInterval(d time.Duration) Option {
	return func(r *Requester) {
		if d > 0 {
			r.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			r.limiter = nil
		}
	}
}

// WithScrubber redacts record text before it is sent. Without one, text is
// sent as written.
func WithScrubber(sc Scrubber) Option {
	return func(r *Requester) {
		r.scrubber = sc
	}
}

// WithTelemetry sets where spans and counters go. The default uses the
// global OpenTelemetry providers.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(r *Requester) {
		r.tracer = t.Tracer(instrumentationName)
		r.initMetrics(t.Meter(instrumentationName))
	}
}

// NewRequester creates a Requester. A nil gen is valid and means no
// credential is configured.
func NewRequester(gen Generator, opts ...Option) *Requester {
	var tel *telemetry.Telemetry
	r := &Requester{
		gen:     gen,
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
		tracer:  tel.Tracer(instrumentationName),
	}
	r.initMetrics(tel.Meter(instrumentationName))

	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("insight")
	return r
}

func (r *Requester) initMetrics(m metric.Meter) {
	c, err := m.Int64Counter(
		"leaderlog.insight.requests_total",
		metric.WithDescription("Insight requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		r.logger.Warn(context.Background(), "failed to create insight counter", zap.Error(err))
		return
	}
	r.requests = c
}

// Configured reports whether a generator is available.
func (r *Requester) Configured() bool {
	return r.gen != nil
}

// Generate requests a summary of the records in state from the last 30 days
// before now.
//
// Checks run in order: no generator, no recent records, then the call. The
// generator is not called unless both checks pass.
func (r *Requester) Generate(ctx context.Context, state journal.AppState, now time.Time) Outcome {
	ctx, span := r.tracer.Start(ctx, "insight.Requester.Generate")
	defer span.End()

	out := r.generate(ctx, span, state, now)

	span.SetAttributes(attribute.String("outcome", string(out.Kind)))
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}
	if r.requests != nil {
		r.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(out.Kind))))
	}
	return out
}

func (r *Requester) generate(ctx context.Context, span trace.Span, state journal.AppState, now time.Time) Outcome {
	if r.gen == nil {
		r.logger.Debug(ctx, "no text generator configured")
		return Outcome{Text: NotConfiguredMessage, Kind: KindNotConfigured}
	}

	recent := Recent(state, now)
	span.SetAttributes(
		attribute.Int("reflections", len(recent.Reflections)),
		attribute.Int("triggers", len(recent.Triggers)),
		attribute.Int("accomplishments", len(recent.Accomplishments)),
	)
	if isEmpty(recent) {
		return Outcome{Text: NoDataMessage, Kind: KindNoData}
	}

	recent, redacted, err := scrub(r.scrubber, recent)
	if err != nil {
		return r.serviceError(ctx, ServiceErrorMessage, fmt.Errorf("redact records: %w", err))
	}
	span.SetAttributes(attribute.Int("redactions", redacted))
	if redacted > 0 {
		r.logger.Info(ctx, "redacted credentials from prompt", zap.Int("count", redacted))
	}

	prompt, err := BuildPrompt(recent)
	if err != nil {
		return r.serviceError(ctx, ServiceErrorMessage, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.limiter != nil {
		if err := r.limiter.Wait(callCtx); err != nil {
			return r.serviceError(ctx, ServiceErrorMessage, fmt.Errorf("%w: %w", ErrRateLimited, err))
		}
	}

	start := time.Now()
	text, err := r.gen.Generate(callCtx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", ErrTimeout, r.timeout, err)
		}
		return r.serviceError(ctx, ServiceErrorMessage, err)
	}
	if strings.TrimSpace(text) == "" {
		return r.serviceError(ctx, EmptyResponseMessage, ErrEmptyResponse)
	}

	r.logger.Info(ctx, "insight generated",
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("response_bytes", len(text)),
		zap.Duration("elapsed", elapsed))
	return Outcome{Text: text, Kind: KindGenerated}
}

func (r *Requester) serviceError(ctx context.Context, msg string, err error) Outcome {
	r.logger.Warn(ctx, "insight request failed", zap.Error(err))
	return Outcome{Text: msg, Kind: KindServiceError, Err: err}
}
