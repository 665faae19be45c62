package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/handiism/rom-browser/internal/catalog"
	"github.com/handiism/rom-browser/internal/download"
	"github.com/handiism/rom-browser/internal/session"
)

// View renders the active screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("🕹  ROM Browser"))
	b.WriteString("\n\n")

	if m.persistWarn != "" {
		b.WriteString(m.theme.Warning.Render("! " + m.persistWarn))
		b.WriteString("\n\n")
	}

	switch m.state {
	case stateRefreshing:
		b.WriteString(m.viewRefreshing())
	case stateBrowse, stateSearch:
		b.WriteString(m.viewBrowse())
	case stateConfirmDest:
		b.WriteString(m.viewConfirmDest())
	case statePathInput, stateEditGlobal, stateEditSource:
		b.WriteString(m.viewPrompt())
	case stateStrategy:
		b.WriteString(m.viewStrategy())
	case stateDownloading:
		b.WriteString(m.viewDownloading())
	case stateSummary:
		b.WriteString(m.viewSummary())
	case stateInfo:
		b.WriteString(m.viewInfo())
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Dim.Render(m.helpText()))

	return b.String()
}

func (m Model) viewRefreshing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.theme.Subtitle.Render("Updating the catalog..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderEvents())

	return b.String()
}

func (m Model) viewBrowse() string {
	var b strings.Builder

	b.WriteString(m.theme.Subtitle.Render(m.browseHeader()))
	b.WriteString("\n\n")

	list := m.sess.DisplayList()
	if len(list) == 0 {
		if m.sess.Query() != "" {
			b.WriteString(m.theme.Dim.Render("  (no matches)"))
		} else {
			b.WriteString(m.theme.Dim.Render("  (empty)"))
		}
		b.WriteString("\n")
	} else {
		height := m.listHeight()
		start := m.sess.ViewportStart(height)
		end := start + height
		if end > len(list) {
			end = len(list)
		}
		sel := m.sess.SelectedIndex()
		nameWidth := m.nameColumnWidth()

		for i := start; i < end; i++ {
			rec := list[i]
			name := rec.Name
			if i == sel {
				name = m.marqueeName(rec.Name, nameWidth)
			} else {
				name = truncateName(name, nameWidth)
			}

			line := runewidth.FillRight(name, nameWidth) + "  " + m.theme.Size.Render(rec.Size)
			if i == sel {
				b.WriteString(m.theme.Selected.Render("▶ " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.theme.Dim.Render(fmt.Sprintf("  %d/%d", sel+1, len(list))))
		b.WriteString("\n")
	}

	if m.state == stateSearch {
		b.WriteString("\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Warning.Render(m.status))
		b.WriteString("\n")
	}

	return b.String()
}

// browseHeader names the source and, when grouped, the active bucket and
// its cycle position.
func (m Model) browseHeader() string {
	name := m.sess.SourceName()
	if name == "" {
		return "No systems configured"
	}
	header := fmt.Sprintf("%s (%d/%d)", name, m.sourcePosition(), m.sess.SourceCount())

	switch m.sess.Mode() {
	case session.ViewByRegion:
		header += fmt.Sprintf("  ·  region: %s", m.sess.BucketName())
	case session.ViewByType:
		header += fmt.Sprintf("  ·  type: %s", m.sess.BucketName())
	}
	if q := m.sess.Query(); q != "" {
		header += fmt.Sprintf("  ·  filter: %q", q)
	}
	if folders := m.cfg.FoldersFor(name); len(folders) > 0 {
		header += fmt.Sprintf("  ·  → %s", filepath.Base(folders[0]))
	}
	return header
}

func (m Model) sourcePosition() int {
	name := m.sess.SourceName()
	for i, n := range m.cfg.SourceNames() {
		if n == name {
			return i + 1
		}
	}
	return 1
}

func (m Model) viewConfirmDest() string {
	var b strings.Builder

	b.WriteString(m.theme.Subtitle.Render("Download"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %s  %s\n\n", m.pending.Name, m.theme.Size.Render(m.pending.Size)))

	b.WriteString(m.theme.Info.Render("Save to:"))
	b.WriteString("\n")

	folders := m.cfg.FoldersFor(m.sess.SourceName())
	if len(folders) > 0 {
		b.WriteString(fmt.Sprintf("  1) %s%s\n", folders[0], m.freeSpace(folders[0])))
	} else {
		b.WriteString(m.theme.Dim.Render("  1) (no folder configured)"))
		b.WriteString("\n")
	}
	def := defaultDownloadDir()
	b.WriteString(fmt.Sprintf("  2) %s%s\n", def, m.freeSpace(def)))
	b.WriteString("  3) other path...\n")

	return b.String()
}

// freeSpace renders the free disk space of an existing directory, or
// nothing when it cannot be determined.
func (m Model) freeSpace(dir string) string {
	usage, err := disk.Usage(dir)
	if err != nil {
		return ""
	}
	return m.theme.Dim.Render(fmt.Sprintf("  (%s free)", humanize.IBytes(usage.Free)))
}

func (m Model) viewPrompt() string {
	var b strings.Builder
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewStrategy() string {
	var b strings.Builder

	b.WriteString(m.theme.Subtitle.Render("aria2c is installed"))
	b.WriteString("\n\n")
	b.WriteString("  a) use aria2c (resumable)\n")
	b.WriteString("  s) built-in streaming\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder
	p := m.snapshot

	b.WriteString(m.theme.Subtitle.Render(p.Name))
	b.WriteString("\n\n")

	switch p.State {
	case download.StateConnecting:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.theme.Info.Render("Connecting..."))
		b.WriteString("\n")
	default:
		if p.Total > 0 {
			b.WriteString(m.progress.View())
			b.WriteString("\n")
			b.WriteString(m.theme.Info.Render(fmt.Sprintf(
				"%s / %s  ·  %s/s  ·  ETA %s",
				humanize.IBytes(uint64(p.Downloaded)),
				humanize.IBytes(uint64(p.Total)),
				humanize.IBytes(uint64(p.Speed)),
				p.ETA().Round(time.Second),
			)))
		} else {
			b.WriteString(m.spinner.View())
			b.WriteString(" ")
			b.WriteString(m.theme.Info.Render(fmt.Sprintf(
				"%s  ·  %s/s",
				humanize.IBytes(uint64(p.Downloaded)),
				humanize.IBytes(uint64(p.Speed)),
			)))
		}
		b.WriteString("\n")
	}

	if p.Output != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Dim.Render(p.Output))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewSummary() string {
	p := m.final

	if p.State == download.StateCompleted {
		return m.theme.Box.Render(fmt.Sprintf(
			"%s\n\n%s\nSaved to: %s\nSize: %s\nTime: %s  ·  %s/s",
			m.theme.Success.Render("✓ Download complete"),
			p.Name,
			p.Dest,
			humanize.IBytes(uint64(p.Downloaded)),
			p.Elapsed.Round(time.Second),
			humanize.IBytes(uint64(p.Speed)),
		))
	}

	return m.theme.Box.Render(fmt.Sprintf(
		"%s\n\n%s\n%s\nPartial file kept: %s (%s)",
		m.theme.Error.Render("✗ Download failed"),
		p.Name,
		p.Err,
		p.Dest,
		humanize.IBytes(uint64(p.Downloaded)),
	))
}

func (m Model) viewInfo() string {
	var b strings.Builder

	src := m.sess.Source()
	name := m.sess.SourceName()

	b.WriteString(m.theme.Subtitle.Render(name))
	b.WriteString("\n\n")

	if src == nil {
		b.WriteString(m.theme.Dim.Render("  (no source selected)"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  ID:       %s\n", src.ID))
	b.WriteString(fmt.Sprintf("  Entries:  %d\n", len(m.cache.Records(name))))
	for _, u := range src.ListingURLs() {
		b.WriteString(fmt.Sprintf("  Listing:  %s\n", u))
	}
	b.WriteString(fmt.Sprintf("  Regions:  %s\n", ruleSummary(src.Regions.Buckets())))
	b.WriteString(fmt.Sprintf("  Types:    %s\n", ruleSummary(src.Types.Buckets())))

	folders := m.cfg.FoldersFor(name)
	if len(folders) == 0 {
		b.WriteString(m.theme.Dim.Render("  Folders:  (none configured)"))
		b.WriteString("\n")
	} else {
		for _, f := range folders {
			b.WriteString(fmt.Sprintf("  Folder:   %s\n", f))
		}
	}

	return b.String()
}

func ruleSummary(buckets []string) string {
	if len(buckets) == 0 {
		return "-"
	}
	return strings.Join(buckets, ", ")
}

func (m Model) renderEvents() string {
	var b strings.Builder

	for _, e := range m.events.tail(12) {
		var style lipgloss.Style
		prefix := "•"
		switch e.Level {
		case catalog.LevelError:
			style = m.theme.Error
			prefix = "✗"
		case catalog.LevelWarning:
			style = m.theme.Warning
			prefix = "!"
		case catalog.LevelSuccess:
			style = m.theme.Success
			prefix = "✓"
		default:
			style = m.theme.Info
			prefix = "›"
		}
		b.WriteString(style.Render(prefix + " " + e.Message))
		b.WriteString("\n")
	}

	return b.String()
}

// marqueeName scrolls a too-wide name by the record's current phase.
func (m Model) marqueeName(name string, width int) string {
	if runewidth.StringWidth(name) <= width {
		return name
	}
	rec, ok := m.sess.Selected()
	if !ok {
		return truncateName(name, width)
	}
	return marqueeWindow(name, m.marquee[rec.Key(m.sess.SourceName())], width)
}

// truncateName cuts a name to the given display width with a trailing
// ellipsis. Cuts fall on rune boundaries, and widths count terminal cells,
// so multibyte and double-width names stay readable and aligned.
func truncateName(name string, width int) string {
	if runewidth.StringWidth(name) <= width {
		return name
	}
	return runewidth.Truncate(name, width, "…")
}

// marqueeWindow returns the part of a name visible at the given scroll
// phase. The phase counts runes skipped from the start; the window is cut
// to the display width.
func marqueeWindow(name string, phase, width int) string {
	runes := []rune(name)
	if phase < 0 {
		phase = 0
	}
	if phase >= len(runes) {
		phase = len(runes) - 1
	}
	return runewidth.Truncate(string(runes[phase:]), width, "")
}

// listHeight is the number of list rows that fit under the chrome.
func (m Model) listHeight() int {
	h := m.height - 10
	if h < 5 {
		return 5
	}
	return h
}

func (m Model) nameColumnWidth() int {
	w := m.width - 16
	if w < 20 {
		return 20
	}
	return w
}

func (m Model) helpText() string {
	switch m.state {
	case stateRefreshing:
		return "q: quit"
	case stateBrowse:
		return "↑/↓: move · ←/→: system · r/t: group · tab: bucket · f: search · enter: download · i: info · g/d: folders · q: quit"
	case stateSearch, statePathInput, stateEditGlobal, stateEditSource:
		return "enter: accept · esc: cancel"
	case stateConfirmDest:
		return "1/2/3: choose · c: cancel"
	case stateStrategy:
		return "a: aria2c · s: stream · c: cancel"
	case stateDownloading:
		return "downloading..."
	case stateSummary, stateInfo:
		return "any key: back"
	}
	return ""
}
