// Package logging provides structured logging for leaderlog.
//
// The package wraps Zap with:
//   - a Trace level (-2, below Debug)
//   - stderr output, so CLI output on stdout stays machine readable
//   - optional OpenTelemetry log output through the otelzap bridge
//   - automatic context fields (trace_id, span_id, cmd, session.id)
//   - secret redaction at the encoder
//
// Create a logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
// Log with context:
//
//	ctx = logging.WithCommand(ctx, "trigger add")
//	logger.Info(ctx, "trigger saved", zap.String("id", id))
//
// Tests use TestLogger:
//
//	tl := logging.NewTestLogger()
//	store := journal.NewStore(state, gw, tl.Logger)
//	tl.AssertLogged(t, zapcore.WarnLevel, "save failed")
package logging
