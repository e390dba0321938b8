// Package logging provides the suite's structured logger: a logr.Logger
// backed by log/slog, with secrets masked before anything is written.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
)

const (
	DefaultFormat Format = "default"
	TextFormat    Format = "text"
	JSONFormat    Format = "json"
)

type (
	Config struct {
		Verbosity int
		Format    string
	}

	Format string
)

// LoadConfigFromFlags adds flags to the given flagset, and, after the
// flagset is parsed by the caller, the flags populate the returned logger
// config.
func LoadConfigFromFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.IntVarP(&cfg.Verbosity, "v", "v", cfg.Verbosity, "Logging level")
	flags.StringVar(&cfg.Format, "log-format", string(DefaultFormat), "Logging format: default, text or json")
}

// New constructs a logger writing to stderr.
func New(cfg Config) (logr.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter constructs a logger writing to w. The default format defers
// to slog's default handler and ignores w.
func NewWithWriter(cfg Config, w io.Writer) (logr.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.Level(-cfg.Verbosity)}

	var h slog.Handler
	switch Format(cfg.Format) {
	case DefaultFormat, "":
		h = &levelHandler{level: opts.Level, Handler: slog.Default().Handler()}
	case TextFormat:
		h = slog.NewTextHandler(w, opts)
	case JSONFormat:
		h = slog.NewJSONHandler(w, opts)
	default:
		return logr.Logger{}, fmt.Errorf("unrecognised logging format: %s", cfg.Format)
	}
	return logr.FromSlogHandler(Redact(h)), nil
}

// Discard returns a logger that drops everything.
func Discard() logr.Logger { return logr.Discard() }

// levelHandler applies a minimum level on top of a handler that has its own.
type levelHandler struct {
	level slog.Leveler
	slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithGroup(name)}
}

const masked = "***"

var sensitiveKeys = []string{"password", "passwd", "secret", "token", "cookie", "authorization"}

var sensitivePatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)"password"\s*:\s*"[^"]*"`), `"password": "***"`},
	{regexp.MustCompile(`(?i)"token"\s*:\s*"[^"]*"`), `"token": "***"`},
	{regexp.MustCompile(`(?i)password=[^&\s]+`), `password=***`},
	{regexp.MustCompile(`(?i)Bearer\s+\S+`), `Bearer ***`},
}

// Redact wraps h so that attributes with sensitive keys are masked and
// credential-shaped substrings in messages and string values are replaced.
func Redact(h slog.Handler) slog.Handler {
	return &redactHandler{next: h}
}

type redactHandler struct {
	next slog.Handler
}

func (h *redactHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *redactHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, RedactString(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redactAttr(a)
	}
	return &redactHandler{next: h.next.WithAttrs(clean)}
}

func (h *redactHandler) WithGroup(name string) slog.Handler {
	return &redactHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, masked)
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, RedactString(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, RedactString(err.Error()))
		}
	case slog.KindGroup:
		group := v.Group()
		clean := make([]any, len(group))
		for i, ga := range group {
			clean[i] = redactAttr(ga)
		}
		return slog.Group(a.Key, clean...)
	}
	return a
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// RedactString masks credential-shaped substrings in s.
func RedactString(s string) string {
	for _, p := range sensitivePatterns {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}
