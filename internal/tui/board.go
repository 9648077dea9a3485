package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lariod12/meosjourney-sub000/internal/cache"
	"github.com/lariod12/meosjourney-sub000/internal/engine"
)

// RunReviewBoard opens the admin review board. Reads go through the dedup
// cache; pass/reject invalidate the affected keys before reloading.
func RunReviewBoard(ctx context.Context, svc *engine.Service, c *cache.Cache, out io.Writer) error {
	m := newBoardModel(ctx, svc, c)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
