// Package logging provides the process-wide structured logger for the
// storage layer.
//
// The package wraps [log/slog] and exposes a single global logger that
// is initialized once and then retrieved via GetLogger. Subsystems
// obtain their logger here rather than constructing their own
// slog.Logger values, so that level and destination are controlled from
// one place.
//
// Call Init once at program startup if you need a non-default
// configuration:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug}); err != nil {
//	    log.Fatal(err)
//	}
//
// If GetLogger is called before Init, a default stderr logger is
// created lazily so that packages which log during startup are safe.
package logging
