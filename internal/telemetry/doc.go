// Package telemetry sets up optional OpenTelemetry export for leaderlog.
//
// Telemetry is off by default. When enabled, spans (for example the insight
// request span), counters and optionally log records are exported over OTLP
// to a collector:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc          # or http/protobuf
//	  sample_rate: 1.0
//	  metrics_enabled: true
//	  logs_enabled: false     # also ship zap logs over OTLP
//	  export_interval: "15s"
//
// Failures never stop the CLI: a provider that cannot be created leaves the
// instance degraded and the global no-op providers in place.
//
// Tests use NewTestTelemetry, which records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	req := insight.NewRequester(gen, insight.WithTelemetry(tt.Telemetry))
//	req.Generate(ctx, state, now)
//	tt.AssertSpanExists(t, "insight.Requester.Generate")
package telemetry
