package logfields

import "log/slog"

// Canonical log field name constants so keys do not drift across packages.
const (
	KeyRepo       = "repository"
	KeyOwner      = "owner"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyRule       = "rule"
	KeyRunID      = "run_id"
	KeyTool       = "tool"
	KeyOutput     = "output"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Granular helpers returning slog.Attr so callers can compose freely.
func Repository(r string) slog.Attr    { return slog.String(KeyRepo, r) }
func Owner(o string) slog.Attr         { return slog.String(KeyOwner, o) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Rule(r string) slog.Attr          { return slog.String(KeyRule, r) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Tool(t string) slog.Attr          { return slog.String(KeyTool, t) }
func Output(o string) slog.Attr        { return slog.String(KeyOutput, o) }
func Page(p int) slog.Attr             { return slog.Int(KeyPage, p) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
