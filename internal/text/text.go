// Package text turns game requests into prose: an OpenAI-compatible chat
// client for live drafting and an offline template writer.
package text

import (
	"strings"

	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/engine"
)

// NewGhostwriter returns the online client when an API key is configured and
// the offline template writer otherwise. online reports which one was chosen.
func NewGhostwriter(cfg Config, log *zap.Logger) (gw engine.Ghostwriter, online bool, err error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		if log != nil {
			log.Info("no text service key; using the offline writer")
		}
		return NewTemplateWriter(), false, nil
	}
	c, err := New(cfg, log)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}
