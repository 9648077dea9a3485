package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Meo's Journey theme (CLI + review board).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconQuest       = "🗺️"
	IconAchievement = "🏆"
	IconSparkle     = "✨"
	IconDone        = "✅"
	IconPending     = "⏳"
	IconFailed      = "💀"
	IconJournal     = "📖"
	IconBolt        = "⚡"
	IconWarn        = "⚠️"
	IconError       = "🧨"
	IconTrash       = "🗑️"
	IconImage       = "🖼️"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// KindIcon picks the marker for a task kind string.
func KindIcon(kind string) string {
	if kind == "achievement" {
		return IconAchievement
	}
	return IconQuest
}

// StatusBadge renders a task or confirmation status with its color.
func StatusBadge(status string) string {
	switch status {
	case "completed":
		return Good.Render(IconDone + " " + status)
	case "failed":
		return Bad.Render(IconFailed + " " + status)
	case "pending", "pending_review":
		return Warn.Render(IconPending + " " + status)
	default:
		return Muted.Render(status)
	}
}

// XPBar renders a fixed-width progress bar toward the next level.
func XPBar(current, max int, width int) string {
	if width <= 0 {
		width = 20
	}
	if max <= 0 {
		max = 1
	}
	filled := current * width / max
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return Gold.Render(bar) + Muted.Render(fmt.Sprintf(" %d/%d", current, max))
}
