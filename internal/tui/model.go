package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lariod12/meosjourney-sub000/internal/cache"
	"github.com/lariod12/meosjourney-sub000/internal/engine"
	"github.com/lariod12/meosjourney-sub000/internal/storage"
	"github.com/lariod12/meosjourney-sub000/internal/ui"
)

const (
	keyPendingQueue = "board.pending"
	keyProfile      = "board.profile"
)

type reviewRow struct {
	conf storage.Confirmation
	task *storage.Task
}

type boardModel struct {
	ctx   context.Context
	svc   *engine.Service
	cache *cache.Cache

	width  int
	height int

	profile *storage.Profile
	rows    []reviewRow

	selected int
	lastLog  string
	loading  bool
	err      error
}

type boardData struct {
	profile *storage.Profile
	rows    []reviewRow
}

type loadedMsg struct {
	data boardData
	err  error
}

type reviewedMsg struct {
	id  string
	res *engine.ReviewResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service, c *cache.Cache) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		cache:   c,
		loading: true,
		lastLog: "Loading…",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		rowsAny, err := m.cache.Get(m.ctx, keyPendingQueue, func(ctx context.Context) (any, error) {
			return m.fetchPending(ctx)
		})
		if err != nil {
			return loadedMsg{err: err}
		}
		profAny, err := m.cache.Get(m.ctx, keyProfile, func(ctx context.Context) (any, error) {
			return m.svc.ProfileRepo().GetOrCreateMain(ctx)
		})
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{data: boardData{
			rows:    rowsAny.([]reviewRow),
			profile: profAny.(*storage.Profile),
		}}
	}
}

func (m boardModel) fetchPending(ctx context.Context) ([]reviewRow, error) {
	confs, err := m.svc.ConfirmationRepo().ListByStatus(ctx, string(engine.ConfirmationPending))
	if err != nil {
		return nil, err
	}
	rows := make([]reviewRow, 0, len(confs))
	for _, c := range confs {
		t, err := m.svc.TaskRepo().Get(ctx, c.TaskID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, reviewRow{conf: c, task: t})
	}
	return rows, nil
}

func (m boardModel) reviewCmd(id string, decision engine.Decision) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ReviewConfirmation(m.ctx, id, decision)
		if err == nil {
			// The mutation went through; drop stale reads before reloading.
			m.cache.Invalidate(keyPendingQueue)
			m.cache.Invalidate(keyProfile)
		}
		return reviewedMsg{id: id, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.profile = msg.data.profile
		m.rows = msg.data.rows
		if m.selected >= len(m.rows) {
			m.selected = len(m.rows) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil

	case reviewedMsg:
		if msg.err != nil {
			m.lastLog = "Review failed: " + msg.err.Error()
			return m, nil
		}
		switch msg.res.Status {
		case engine.ConfirmationCompleted:
			line := fmt.Sprintf("Passed %s", msg.id)
			if p := msg.res.Progression; p != nil {
				line += fmt.Sprintf(": +%d XP", p.EffectiveXP)
				if p.LeveledUp {
					line += " " + ui.BadgeLevelUp
				}
			}
			m.lastLog = line
		default:
			m.lastLog = fmt.Sprintf("Rejected %s; task is available again.", msg.id)
		}
		if len(msg.res.Warnings) > 0 {
			m.lastLog += " " + ui.Warn.Render(ui.IconWarn+" "+strings.Join(msg.res.Warnings, "; "))
		}
		m.loading = true
		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			m.cache.Invalidate(keyPendingQueue)
			m.cache.Invalidate(keyProfile)
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}
			return m, nil
		case "p", "enter":
			if row, ok := m.selectedRow(); ok {
				m.lastLog = fmt.Sprintf("Passing %s…", row.conf.ID)
				return m, m.reviewCmd(row.conf.ID, engine.DecisionPass)
			}
			return m, nil
		case "x":
			if row, ok := m.selectedRow(); ok {
				m.lastLog = fmt.Sprintf("Rejecting %s…", row.conf.ID)
				return m, m.reviewCmd(row.conf.ID, engine.DecisionReject)
			}
			return m, nil
		}
	}
	return m, nil
}

func (m boardModel) selectedRow() (reviewRow, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return reviewRow{}, false
	}
	return m.rows[m.selected], true
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	var b strings.Builder
	b.WriteString(ui.Heading(ui.IconJournal, "Review Queue"))
	b.WriteString("\n")

	if m.profile != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			ui.LabelValue("Level", m.profile.Level),
			ui.XPBar(m.profile.CurrentXP, m.profile.MaxXP, 24)))
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(ui.Muted.Render("Loading…") + "\n")
	} else if len(m.rows) == 0 {
		b.WriteString(ui.Muted.Render("Nothing awaiting review.") + "\n")
	}

	for i, row := range m.rows {
		title := row.conf.ID
		kind := ""
		if row.task != nil {
			kind = ui.KindIcon(row.task.Kind) + " "
		}
		line := fmt.Sprintf("%s%s — %s", kind, title, row.conf.Description)
		if row.conf.ImageRef != nil {
			line += " " + ui.IconImage
		}
		if i == m.selected {
			line = ui.SelectedRow.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(ui.Muted.Render("[p] pass  [x] reject  [r] refresh  [q] quit") + "\n")
	b.WriteString(m.lastLog + "\n")
	return b.String()
}
