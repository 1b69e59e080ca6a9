package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

const chartHeight = 6

// View renders the panel.
func (m *PanelModel) View() string {
	if m.width <= 0 {
		return "loading..."
	}

	if m.settings != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.settings.View(m.width-4))
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderEntries())
	if m.showChart {
		sections = append(sections, m.renderActivityChart())
	}
	sections = append(sections, m.renderStatusLine())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *PanelModel) renderHeader() string {
	left := titleStyle.Render("Vigil") + dimStyle.Render(" · unpatrolled changes")

	source := m.active.Origin
	scope := m.active.Namespace
	right := dimStyle.Render(fmt.Sprintf("%s/%s · %d entries", source, scope, m.active.Quantity))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *PanelModel) renderEntries() string {
	if len(m.entries) == 0 {
		return dimStyle.Render("  waiting for first poll...")
	}

	var lines []string
	for i, e := range m.entries {
		lines = append(lines, m.renderEntry(e, i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// renderEntry draws one row, composing every applicable classification:
// new-page and risk indicators, delta sign color, and large-change bold.
// Selection applies reverse video per-segment so classification survives.
func (m *PanelModel) renderEntry(e Entry, selected bool) string {
	base := lipgloss.NewStyle()
	if selected {
		base = selectedStyle
	}
	sty := func(s lipgloss.Style) lipgloss.Style {
		if selected {
			return s.Reverse(true)
		}
		return s
	}

	if e.Placeholder {
		return sty(dimStyle).Render("  — " + e.Title + " —")
	}

	indicator := base.Render("  ")
	switch {
	case e.Classes.NewPage && e.Classes.Risky:
		indicator = sty(newPageStyle).Render("N") + sty(riskyStyle).Render("!")
	case e.Classes.NewPage:
		indicator = sty(newPageStyle).Render("N") + base.Render(" ")
	case e.Classes.Risky:
		indicator = sty(riskyStyle).Render("!") + base.Render(" ")
	}

	titleRendered := base.Render(e.Title)
	if e.Classes.Risky {
		titleRendered = sty(riskyStyle).Render(e.Title)
	} else if e.Classes.NewPage {
		titleRendered = sty(newPageStyle).Render(e.Title)
	}

	delta := fmt.Sprintf("%+d", e.Delta)
	if e.Delta == 0 {
		delta = "±0"
	}
	deltaStyle := sty(dimStyle)
	if e.Classes.Positive {
		deltaStyle = sty(positiveStyle)
	} else if e.Classes.Negative {
		deltaStyle = sty(negativeStyle)
	}
	if e.Classes.Large {
		deltaStyle = deltaStyle.Bold(true)
		delta += "!"
	}

	return indicator + base.Render(" ") + titleRendered + base.Render("  ") +
		deltaStyle.Render(fmt.Sprintf("%7s", delta)) + base.Render("  ") +
		sty(dimStyle).Render(e.RelTime)
}

// renderActivityChart draws per-minute seen-change counts from the
// history journal as a bar chart.
func (m *PanelModel) renderActivityChart() string {
	width := m.width - 2
	if width < 20 {
		width = 20
	}

	title := accentStyle.Render(fmt.Sprintf("Activity (last %dm · %d seen total)", chartBuckets, m.totalSeen))

	if len(m.activity) == 0 {
		return title + "\n" + dimStyle.Render("  no journaled activity yet")
	}

	maxBars := width / 2
	data := m.activity
	if len(data) > maxBars {
		data = data[len(data)-maxBars:]
	}

	bc := barchart.New(width, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	for _, bucket := range data {
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: "seen", Value: float64(bucket.Count), Style: chartBarStyle},
			},
		})
	}
	bc.Draw()

	out := title + "\n" + bc.View()
	if len(m.topTags) > 0 {
		parts := make([]string, 0, len(m.topTags))
		for _, tc := range m.topTags {
			parts = append(parts, fmt.Sprintf("%s ×%d", tc.Tag, tc.Count))
		}
		out += "\n" + dimStyle.Render("frequent tags: "+strings.Join(parts, " · "))
	}
	return out
}

func (m *PanelModel) renderStatusLine() string {
	var left string
	switch {
	case m.poll.hidden:
		left = "⏸ hidden · polling suspended"
	case m.fetchErr != "":
		left = negativeStyle.Render(fmt.Sprintf("fetch failed %s: %s",
			m.fetchErrAt.Format("15:04:05"), m.fetchErr))
	case m.notice != "":
		left = m.notice
	default:
		left = fmt.Sprintf("every %s · last check %s",
			formatInterval(m.active.Interval()), m.formatLastChecked())
	}

	help := "s: settings • r: refresh • c: chart • q: quit"

	gap := m.width - lipgloss.Width(left) - len(help) - 2
	if gap < 1 {
		return statusStyle.Width(m.width).Render(" " + left)
	}
	return statusStyle.Width(m.width).Render(" " + left + strings.Repeat(" ", gap) + help)
}

func (m *PanelModel) formatLastChecked() string {
	if m.poll.lastCheckedAt.IsZero() {
		return "never"
	}
	return m.poll.lastCheckedAt.Format("15:04:05")
}

func formatInterval(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
