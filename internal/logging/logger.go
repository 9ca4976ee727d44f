package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vanshika/referralnet/internal/config"
	"github.com/vanshika/referralnet/internal/domain"
)

// New builds a slog.Logger configured according to the provided logging config.
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LogDiagnostics writes one warning per structural defect found in a referral
// payload, plus a summary line.
func LogDiagnostics(logger *slog.Logger, diags domain.Diagnostics) {
	if logger == nil || diags.Empty() {
		return
	}
	for _, d := range diags {
		logger.Warn("referral payload defect",
			"kind", string(d.Kind),
			"nodeId", d.NodeID,
			"field", d.Field,
			"depth", d.Depth,
			"detail", d.Message,
		)
	}
	logger.Warn("referral network built with diagnostics",
		"total", len(diags),
		"malformed", diags.Count(domain.KindMalformedNode),
		"duplicates", diags.Count(domain.KindDuplicateIdentifier),
		"truncated", diags.Count(domain.KindDepthLimitExceeded),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
