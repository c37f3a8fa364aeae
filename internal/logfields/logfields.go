package logfields

import "log/slog"

// Canonical log field names shared across packages.
const (
	KeyContext = "context"
	KeyTarget  = "target"
	KeyAction  = "action"
	KeyURL     = "url"
	KeyKind    = "page_kind"
	KeyTrigger = "trigger"
	KeySeconds = "current_seconds"
	KeyStore   = "store"
	KeyKeys    = "keys"
	KeyPath    = "path"
	KeyError   = "error"
)

func Context(name string) slog.Attr { return slog.String(KeyContext, name) }
func Target(t string) slog.Attr     { return slog.String(KeyTarget, t) }
func Action(a string) slog.Attr     { return slog.String(KeyAction, a) }
func URL(u string) slog.Attr        { return slog.String(KeyURL, u) }
func Kind(k string) slog.Attr       { return slog.String(KeyKind, k) }
func Trigger(name string) slog.Attr { return slog.String(KeyTrigger, name) }
func Seconds(s int) slog.Attr       { return slog.Int(KeySeconds, s) }
func Store(name string) slog.Attr   { return slog.String(KeyStore, name) }
func Keys(keys []string) slog.Attr  { return slog.Any(KeyKeys, keys) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
