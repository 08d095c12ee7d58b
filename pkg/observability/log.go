package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level.
// It implements LayoutHooks, CacheHooks and ServerHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnFitStart(_ context.Context, items int, width float64) {
	h.logger.Debug("fit start", "items", items, "width", width)
}

func (h *LogHooks) OnFitComplete(_ context.Context, s FitStats) {
	h.logger.Debug("fit complete",
		"items", s.Items,
		"rows", s.Rows,
		"hidden", s.Hidden,
		"fallback", s.Fallback,
		"duration", s.Duration)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render complete", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("request", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ LayoutHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ ServerHooks = (*LogHooks)(nil)
)
