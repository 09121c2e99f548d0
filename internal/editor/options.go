package editor

import (
	"github.com/example/photomark/internal/config"
	"github.com/example/photomark/internal/render"
)

// ConfigOptions translates the editing settings of cfg into session options.
// It fails only for an unknown renderer backend.
func ConfigOptions(cfg *config.Config) ([]Option, error) {
	r, err := render.New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	style := DefaultStyle()
	style.FontSize = cfg.TextSize
	return []Option{
		WithSize(cfg.CanvasWidth, cfg.CanvasHeight),
		WithHistoryLimit(cfg.HistoryLimit),
		WithMaxPixels(cfg.MaxPixels),
		WithColor(cfg.DrawColor()),
		WithStyle(style),
		WithRenderer(r),
	}, nil
}
