package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/engine"
	"github.com/DaanHessen/fanlife/internal/store"
)

// Run boots the TUI program and blocks until it exits. saves may be nil.
func Run(ctx context.Context, g *engine.Game, saves *store.Saves, theme string, log *zap.Logger) error {
	m := newModel(ctx, g, saves, theme, log)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
