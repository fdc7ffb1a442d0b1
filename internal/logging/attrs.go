package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

const (
	// FieldComponent is the standardized key for component names.
	FieldComponent = "component"
	// FieldFile is the standardized key for the comic file being processed.
	FieldFile = "file"
	// FieldFolder is the standardized key for the series folder path.
	FieldFolder = "folder"
	// FieldSeries is the standardized key for a series/volume name.
	FieldSeries = "series"
	// FieldIssue is the standardized key for an issue number.
	FieldIssue = "issue"
	// FieldVolumeID is the standardized key for a catalog volume id.
	FieldVolumeID = "volume_id"
	// FieldRunID is the standardized key for the per-invocation run id.
	FieldRunID = "run_id"
	// FieldHint carries remediation guidance alongside warnings.
	FieldHint = "hint"
)

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(nopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// A nil base logger falls back to the no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
