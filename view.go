package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wrap"
)

const (
	// RuleWidth is the width of the horizontal rules around the header
	RuleWidth = 75

	// ProcessColumnWidth caps the process name in the port tables
	ProcessColumnWidth = 20

	// DetailWidth is the wrap width of the full command in the details panel
	DetailWidth = 60
)

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return countStyle.Render("\n  Goodbye! Your ports are safe.") + "\n\n"
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())

	switch m.screen {
	case screenMenu:
		sb.WriteString(m.renderMenu())
	case screenList:
		sb.WriteString(m.renderList())
	case screenKillSelect:
		sb.WriteString(m.renderKillSelect())
	case screenConfirm:
		sb.WriteString(m.renderConfirm())
	case screenKillResult:
		sb.WriteString(m.renderKillResult())
	case screenMonitor:
		sb.WriteString(m.renderMonitor())
	}
	return sb.String()
}

func (m Model) renderHeader() string {
	rule := dimStyle.Render(strings.Repeat("─", RuleWidth))
	var sb strings.Builder
	sb.WriteString(bannerStyle.Render("  ◉ PortWatcher"))
	sb.WriteByte('\n')
	sb.WriteString(rule)
	sb.WriteByte('\n')
	sb.WriteString(titleStyle.Render("  PortWatcher "))
	sb.WriteString(versionStyle.Render("v" + m.version))
	sb.WriteString(dimStyle.Render("  |  System Port Monitor"))
	sb.WriteByte('\n')
	sb.WriteString(rule)
	sb.WriteString("\n\n")
	return sb.String()
}

func (m Model) renderMenu() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("  What would you like to do?"))
	sb.WriteString("\n\n")
	for i, item := range mainMenu {
		if i == m.menuCursor {
			sb.WriteString(menuCursorStyle.Render("  ❯ " + item.title))
		} else {
			sb.WriteString(menuItemStyle.Render("    " + item.title))
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(menuDescStyle.Render("  " + mainMenu[m.menuCursor].desc))
	sb.WriteString(helpStyle.Render("\n  ↑/k up • ↓/j down • enter select • q quit"))
	return sb.String()
}

func (m Model) renderSpinner(label string) string {
	return "  " + m.spinner.View() + " " + label + "\n"
}

func (m Model) renderList() string {
	if m.busy() {
		return m.renderSpinner("Scanning ports...")
	}

	var sb strings.Builder
	switch {
	case m.scanErr != nil:
		sb.WriteString(errorStyle.Render("  Error scanning ports"))
		sb.WriteString("\n  " + m.scanErr.Error() + "\n")
	case len(m.ports) == 0:
		sb.WriteString(emptyStyle.Render("  No listening ports found."))
		sb.WriteByte('\n')
	default:
		sb.WriteString(countStyle.Render(fmt.Sprintf("  Found %d active ports:", len(m.ports))))
		sb.WriteString("\n\n")
		sb.WriteString(renderPortTable(m.ports))
		sb.WriteString("\n\n")
		sb.WriteString(renderLegend())
		sb.WriteByte('\n')
	}
	sb.WriteString(pauseHint())
	return sb.String()
}

func (m Model) renderKillSelect() string {
	if m.busy() {
		return m.renderSpinner("Loading ports...")
	}

	var sb strings.Builder
	switch {
	case m.scanErr != nil:
		sb.WriteString(errorStyle.Render("  Error: " + m.scanErr.Error()))
		sb.WriteByte('\n')
		sb.WriteString(pauseHint())
	case len(m.ports) == 0:
		sb.WriteString(emptyStyle.Render("  No active ports to terminate."))
		sb.WriteByte('\n')
		sb.WriteString(pauseHint())
	default:
		sb.WriteString(confirmStyle.UnsetMarginTop().Render("  Select port to terminate:"))
		sb.WriteString("\n\n")
		sb.WriteString(m.portTable.View())
		if cursor := m.portTable.Cursor(); cursor >= 0 && cursor < len(m.ports) {
			sb.WriteString(dimStyle.Render("\n  Address: " + m.ports[cursor].Address))
		}
		sb.WriteString(helpStyle.Render("\n  ↑/↓ move • enter select • esc back to menu"))
	}
	return sb.String()
}

func (m Model) renderConfirm() string {
	var sb strings.Builder
	if m.busy() {
		sb.WriteString(m.renderSpinner("Reading process details..."))
	} else if m.targetInfo != nil {
		sb.WriteString(renderProcessDetails(*m.targetInfo))
		sb.WriteByte('\n')
	}
	sb.WriteString(confirmStyle.Render(fmt.Sprintf(
		"  Are you sure you want to kill the process on port %d? (y/N)", m.target.Port)))
	return sb.String()
}

func renderProcessDetails(info ProcessInfo) string {
	rows := []string{
		detailLabelStyle.Render("PID:") + info.PID,
		detailLabelStyle.Render("User:") + info.User,
		detailLabelStyle.Render("Command:") + summarizeCommand(info.Cmd),
	}
	if info.RSS > 0 {
		rows = append(rows, detailLabelStyle.Render("Memory:")+formatBytes(info.RSS))
	}
	if !info.Started.IsZero() {
		rows = append(rows, detailLabelStyle.Render("Started:")+info.Started.Format("Jan 02 15:04:05"))
	}
	if info.Cmd != "" {
		rows = append(rows, "", dimStyle.Render(wrap.String(info.Cmd, DetailWidth)))
	}
	title := dimStyle.Render(" Process Details ")
	return title + "\n" + detailBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderKillResult() string {
	var sb strings.Builder
	switch {
	case m.cancelled:
		sb.WriteString(dimStyle.Render("  Operation cancelled."))
	case m.busy():
		sb.WriteString(m.renderSpinner(fmt.Sprintf("Terminating process on port %d...", m.target.Port)))
		return sb.String()
	case m.result.Success:
		sb.WriteString(successStyle.Render("  ✔ " + m.result.Message))
	default:
		sb.WriteString(errorStyle.Render("  ✖ " + m.result.Message))
	}
	sb.WriteByte('\n')
	sb.WriteString(pauseHint())
	return sb.String()
}

func (m Model) renderMonitor() string {
	var sb strings.Builder
	sb.WriteString(monitorTitleStyle.Render("  MONITOR MODE"))
	sb.WriteString(dimStyle.Render(fmt.Sprintf(" (updates every %s) | Ctrl+C to exit", m.refreshInterval)))
	sb.WriteString("\n\n")

	switch {
	case m.scanErr != nil:
		sb.WriteString(errorStyle.Render("  Error: " + m.scanErr.Error()))
		sb.WriteByte('\n')
	case m.lastUpdate.IsZero():
		sb.WriteString(dimStyle.Render("  Scanning ports..."))
		sb.WriteByte('\n')
	default:
		sb.WriteString(renderPortTable(m.ports))
		sb.WriteByte('\n')
	}

	if !m.lastUpdate.IsZero() {
		sb.WriteString(dimStyle.Render("\n  Last update: " + m.lastUpdate.Format("15:04:05")))
	}
	if m.skippedTicks > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  (%d slow refreshes skipped)", m.skippedTicks)))
	}
	return sb.String()
}

// renderPortTable draws ports as a bordered table, coloring protocols and
// privileged ports
func renderPortTable(ports []PortRecord) string {
	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		rows = append(rows, []string{
			string(p.Protocol),
			p.PortText(),
			p.Address,
			p.PID,
			truncateText(p.Process, ProcessColumnWidth),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers("PROTO", "PORT", "ADDRESS", "PID", "PROCESS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			if row < 0 || row >= len(ports) {
				return cellStyle
			}
			return portCellStyle(ports[row], col)
		})
	return t.Render()
}

func portCellStyle(p PortRecord, col int) lipgloss.Style {
	switch col {
	case 0:
		if p.Protocol == ProtocolUDP {
			return udpStyle
		}
		return tcpStyle
	case 1:
		if p.Privileged() {
			return privilegedStyle
		}
		return processStyle
	case 2:
		return addressStyle
	case 3:
		return pidStyle
	default:
		return processStyle
	}
}

func renderLegend() string {
	sep := dimStyle.Render(" | ")
	return dimStyle.Render("  Legend: ") +
		privilegedStyle.UnsetPadding().Render(fmt.Sprintf("port < %d (privileged)", SystemPortThreshold)) + sep +
		tcpStyle.UnsetPadding().Render("TCP") + sep +
		udpStyle.UnsetPadding().Render("UDP")
}

func pauseHint() string {
	return helpStyle.Render("  Press any key to continue...")
}
