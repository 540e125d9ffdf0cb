package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyDocname    = "docname"
	KeyCards      = "cards"
	KeyPath       = "path"
	KeyArchive    = "archive"
	KeySource     = "source"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Docname(d string) slog.Attr      { return slog.String(KeyDocname, d) }
func Cards(n int) slog.Attr           { return slog.Int(KeyCards, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Archive(p string) slog.Attr      { return slog.String(KeyArchive, p) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
