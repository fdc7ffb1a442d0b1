// Package logging builds the slog loggers used across runarr.
//
// It offers a console handler tuned for interactive runs (timestamp, level,
// component prefix, key=value attrs) and a JSON handler for log files, plus
// small helpers for standardized attribute keys so component code never
// imports log/slog directly for attr construction.
package logging
