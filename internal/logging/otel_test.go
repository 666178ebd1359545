package logging

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// recordingExporter keeps every exported record in memory.
type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) Records() []sdklog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sdklog.Record(nil), e.records...)
}

func newRecordingProvider(t *testing.T) (*sdklog.LoggerProvider, *recordingExporter) {
	t.Helper()
	exp := &recordingExporter{}
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })
	return lp, exp
}

func TestNewLogger_OTELOutputExportsRecords(t *testing.T) {
	lp, exp := newRecordingProvider(t)

	cfg := NewDefaultConfig()
	cfg.Output.Stderr = false
	cfg.Output.OTEL = true

	logger, err := NewLogger(cfg, lp)
	require.NoError(t, err)

	logger.Warn(context.Background(), "journal opened read-only", zap.String("path", "/tmp/j.json"))

	records := exp.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "journal opened read-only", records[0].Body().AsString())
	assert.Equal(t, log.SeverityWarn, records[0].Severity())

	var path string
	records[0].WalkAttributes(func(kv log.KeyValue) bool {
		if kv.Key == "path" {
			path = kv.Value.AsString()
		}
		return true
	})
	assert.Equal(t, "/tmp/j.json", path)
}

func TestNewLogger_TeesStderrAndOTEL(t *testing.T) {
	lp, exp := newRecordingProvider(t)

	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Output.OTEL = true
	cfg.Writer = zapcore.AddSync(&buf)

	logger, err := NewLogger(cfg, lp)
	require.NoError(t, err)

	logger.Warn(context.Background(), "journal loaded")
	logger.Info(context.Background(), "below the configured level")

	assert.Contains(t, buf.String(), "journal loaded")
	assert.NotContains(t, buf.String(), "below the configured level")
	require.Len(t, exp.Records(), 1)
	assert.Equal(t, "journal loaded", exp.Records()[0].Body().AsString())
}

func TestNewLogger_OTELRedactsFields(t *testing.T) {
	lp, exp := newRecordingProvider(t)

	cfg := NewDefaultConfig()
	cfg.Output.Stderr = false
	cfg.Output.OTEL = true

	logger, err := NewLogger(cfg, lp)
	require.NoError(t, err)

	logger.With(zap.String("token", "abc123")).Warn(context.Background(), "calling insight service",
		zap.String("api_key", "AIzaSyExampleExampleExample00"),
		zap.String("header", "Bearer abc.def"))

	records := exp.Records()
	require.Len(t, records, 1)
	attrs := map[string]string{}
	records[0].WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	assert.Equal(t, "[REDACTED]", attrs["api_key"])
	assert.Equal(t, "[REDACTED:pattern]", attrs["header"])
	assert.Equal(t, "[REDACTED]", attrs["token"])
	assert.Equal(t, "leaderlog", attrs["service"])
}

func TestNewLogger_OTELWithoutProviderFails(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.Stderr = false
	cfg.Output.OTEL = true

	_, err := NewLogger(cfg, nil)
	assert.Error(t, err)
}
