package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger.WithPrefix("events")}
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetLoadHooks(h)
	SetRenderHooks(h)
	SetInteractionHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnLoadStart(_ context.Context, kind, source string) {
	h.Logger.Debug("load start", "kind", kind, "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, kind, source string, count int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("load failed", "kind", kind, "source", source, "err", err)
		return
	}
	h.Logger.Debug("load done", "kind", kind, "count", count, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnLoadFailed(_ context.Context, kind string, err error) {
	h.Logger.Debug("load degraded", "kind", kind, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "took", d.Round(time.Millisecond), "err", err)
}

func (h *LogHooks) OnTransition(event, id, selected, hovered string) {
	h.Logger.Debug("transition", "event", event, "section", id, "selected", selected, "hovered", hovered)
}

func (h *LogHooks) OnReload(sections int) {
	h.Logger.Debug("reload", "sections", sections)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
