package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/leaderlog/internal/config"
	"github.com/fyrsmithlabs/leaderlog/internal/insight"
	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/logging"
	"github.com/fyrsmithlabs/leaderlog/internal/redact"
	"github.com/fyrsmithlabs/leaderlog/internal/storage"
	"github.com/fyrsmithlabs/leaderlog/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// app holds everything a command needs. It is built per invocation and
// released by Close.
type app struct {
	ctx       context.Context
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	gateway   storage.Gateway
	store     *journal.Store
	requester *insight.Requester
}

// openApp loads configuration, applies the global flags, and wires logging,
// telemetry, storage and the insight requester.
//
// A corrupt or unsupported state blob is reported on stderr and the command
// continues with an empty journal. Any other load failure also continues
// empty, but every save is refused so the unread journal is left alone.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	ctx = logging.WithCommand(ctx, cmd.CommandPath())
	ctx = logging.WithSessionID(ctx, uuid.NewString())

	// Telemetry comes first so the logger can tee into its log provider.
	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logCfg, err := logging.FromAppConfig(cfg.Logging)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	logCfg.Writer = zapcore.AddSync(cmd.ErrOrStderr())
	lp := tel.LoggerProvider()
	logCfg.Output.OTEL = lp != nil
	logger, err := logging.NewLogger(logCfg, lp)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.Strings("reasons", h.Reasons))
	}

	gw, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var saver journal.Saver = gw
	state, err := gw.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrCorrupt), errors.Is(err, storage.ErrUnsupportedVersion):
		cmd.PrintErrf("Warning: saved journal could not be read (%v); starting empty\n", err)
	case err != nil:
		// The journal may be intact but unreachable. Never overwrite it.
		cmd.PrintErrf("Warning: saved journal could not be loaded (%v); continuing read-only\n", err)
		logger.Warn(ctx, "journal opened read-only", zap.Error(err))
		saver = readOnlySaver{cause: err}
	}

	gen, err := insight.NewGenerator(ctx, cfg.Insights)
	if err != nil {
		// Insights are optional; the rest of the CLI still works.
		logger.Warn(ctx, "insight generator unavailable", zap.Error(err))
		gen = nil
	}

	opts := []insight.Option{
		insight.WithTimeout(cfg.Insights.Timeout.Duration()),
		insight.WithMinInterval(cfg.Insights.MinInterval.Duration()),
		insight.WithLogger(logger),
		insight.WithTelemetry(tel),
	}
	if gen != nil && !cfg.Insights.DisableRedaction {
		opts = append(opts, insight.WithScrubber(newRedactor(ctx, cfg.Insights, logger)))
	}

	a := &app{
		ctx:       ctx,
		cfg:       cfg,
		logger:    logger,
		telemetry: tel,
		gateway:   gw,
		store:     journal.NewStore(state, saver, logger),
		requester: insight.NewRequester(gen, opts...),
	}

	logger.Debug(ctx, "journal loaded",
		zap.String("backend", cfg.Storage.Backend),
		zap.Int("reflections", len(state.Reflections)),
		zap.Int("triggers", len(state.Triggers)),
		zap.Int("accomplishments", len(state.Accomplishments)),
		zap.Bool("insights_configured", a.requester.Configured()))

	return a, nil
}

// errReadOnly is returned by saves after the journal failed to load.
var errReadOnly = errors.New("journal is read-only")

type readOnlySaver struct {
	cause error
}

func (r readOnlySaver) Save(context.Context, journal.AppState) error {
	return fmt.Errorf("%w: load failed: %w", errReadOnly, r.cause)
}

// newRedactor builds the credential scrubber for insight prompts. A broken
// allowlist is logged and ignored; redaction itself stays on.
func newRedactor(ctx context.Context, cfg config.InsightsConfig, logger *logging.Logger) *redact.Redactor {
	path := cfg.Allowlist
	if path == "" {
		p, err := redact.DefaultAllowlistPath()
		if err == nil {
			path = p
		}
	}

	allow, err := redact.LoadAllowlist(path)
	if err != nil {
		logger.Warn(ctx, "ignoring redaction allowlist", zap.String("path", path), zap.Error(err))
		allow = nil
	}
	r, err := redact.New(allow)
	if err != nil {
		logger.Warn(ctx, "ignoring redaction allowlist", zap.String("path", path), zap.Error(err))
		r, _ = redact.New(nil)
	}
	return r
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if statePath != "" {
		cfg.Storage.Path = statePath
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	return cfg, nil
}

// Close releases storage and flushes telemetry and logs.
func (a *app) Close() {
	if err := a.gateway.Close(); err != nil {
		a.logger.Warn(a.ctx, "failed to close storage", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn(a.ctx, "telemetry shutdown failed", zap.Error(err))
	}

	_ = a.logger.Sync() // Best-effort sync
}

// withApp runs fn with a freshly opened app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
