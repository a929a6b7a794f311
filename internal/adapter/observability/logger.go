package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
)

// SetupLogger configures the process-wide JSON logger. Logs go to stderr so
// command output on stdout (reports, instruction paths) stays pipeable.
func SetupLogger(cfg config.Config) *slog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewJSONHandler(w, opts)).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}
