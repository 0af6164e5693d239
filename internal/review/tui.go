package review

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgauin01/hustlebot/internal/model"
)

// Lines per match item in the list view (title + subtitle + blank separator).
const matchItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")) // bright blue

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	matchTitleStyle = lipgloss.NewStyle().
			Bold(true)

	matchSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	hotScoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("202")) // orange

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // green
)

// MatchQueue is everything the TUI needs from the persistence layer: the
// pending matches, the history it marks on explicit user action, and the
// tracker rows it creates for tracked jobs.
type MatchQueue interface {
	Matches() ([]model.Job, error)
	DeleteMatch(jobID string) error
	MarkSeen(jobID string) error
	SaveApplication(job model.Job, status string) error
	Artifact(jobID, kind string) (string, error)
}

// matchResolvedMsg is sent when an async track/dismiss completes.
type matchResolvedMsg struct {
	jobID  string
	action string // "tracked" or "dismissed"
	err    error
}

// artifactLoadedMsg is sent when an async proposal lookup completes.
type artifactLoadedMsg struct {
	jobID   string
	content string
	err     error
}

type reviewModel struct {
	queue   MatchQueue
	matches []model.Job

	listViewport viewport.Model
	cursor       int
	width        int
	height       int
	ready        bool

	// Detail view state
	view            viewState
	detailJob       model.Job
	detailViewport  viewport.Model
	proposal        string
	proposalShown   bool
	proposalMissing bool

	flash    string
	errorMsg string
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case matchResolvedMsg:
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("failed to resolve match: %v", msg.err)
			return m, nil
		}
		m.errorMsg = ""
		m.flash = msg.action
		m.removeMatch(msg.jobID)
		m.view = viewList
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil

	case artifactLoadedMsg:
		if msg.jobID != m.detailJob.ID {
			return m, nil
		}
		if msg.err != nil {
			m.proposalMissing = true
		} else {
			m.proposal = msg.content
			m.proposalShown = true
		}
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	case "t":
		return m.resolveSelected("tracked")
	case "d":
		return m.resolveSelected("dismissed")
	case "o":
		if len(m.matches) > 0 {
			openURL(m.matches[m.cursor].URL)
		}
		return m, nil
	}

	// Forward other keys (pgup/pgdn/home/end) to the viewport.
	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		m.proposal = ""
		m.proposalShown = false
		m.proposalMissing = false
		return m, nil
	case "o":
		openURL(m.detailJob.URL)
		return m, nil
	case "t":
		return m.resolveJob(m.detailJob, "tracked")
	case "d":
		return m.resolveJob(m.detailJob, "dismissed")
	case "p":
		if m.proposalShown {
			m.proposalShown = false
			m.detailViewport.SetContent(m.renderDetail())
			return m, nil
		}
		if m.proposal != "" {
			m.proposalShown = true
			m.detailViewport.SetContent(m.renderDetail())
			return m, nil
		}
		if !m.proposalMissing {
			return m, m.loadProposalCmd(m.detailJob)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// resolveSelected tracks or dismisses the match under the cursor.
func (m reviewModel) resolveSelected(action string) (tea.Model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}
	return m.resolveJob(m.matches[m.cursor], action)
}

// resolveJob marks the job as seen so no future run resurfaces it, records a
// tracker row when tracking, and removes it from the pending queue.
func (m reviewModel) resolveJob(job model.Job, action string) (tea.Model, tea.Cmd) {
	queue := m.queue
	return m, func() tea.Msg {
		if action == "tracked" {
			if err := queue.SaveApplication(job, "to_apply"); err != nil {
				return matchResolvedMsg{jobID: job.ID, action: action, err: err}
			}
		}
		if err := queue.MarkSeen(job.ID); err != nil {
			return matchResolvedMsg{jobID: job.ID, action: action, err: err}
		}
		if job.URL != "" && job.URL != job.ID {
			if err := queue.MarkSeen(job.URL); err != nil {
				return matchResolvedMsg{jobID: job.ID, action: action, err: err}
			}
		}
		if err := queue.DeleteMatch(job.ID); err != nil {
			return matchResolvedMsg{jobID: job.ID, action: action, err: err}
		}
		return matchResolvedMsg{jobID: job.ID, action: action}
	}
}

func (m reviewModel) loadProposalCmd(job model.Job) tea.Cmd {
	queue := m.queue
	return func() tea.Msg {
		content, err := queue.Artifact(job.ID, "proposal")
		return artifactLoadedMsg{jobID: job.ID, content: content, err: err}
	}
}

func (m *reviewModel) removeMatch(jobID string) {
	for i := range m.matches {
		if m.matches[i].ID == jobID {
			m.matches = append(m.matches[:i], m.matches[i+1:]...)
			break
		}
	}
	m.cursor = clamp(m.cursor, 0, max(len(m.matches)-1, 0))
}

func (m *reviewModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.matches)-1, 0))
}

func (m *reviewModel) ensureCursorVisible() {
	cursorTop := m.cursor * matchItemHeight
	cursorBottom := cursorTop + matchItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detailJob = m.matches[m.cursor]
	m.proposal = ""
	m.proposalShown = false
	m.proposalMissing = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *reviewModel) recalcLayout() {
	paneWidth := max(m.width-2, 20)
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = paneWidth
		m.listViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.listViewport.SetContent(renderMatches(m.matches, m.cursor))
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m reviewModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf(" Pending Matches (%d)", len(m.matches)))

	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())

	statusText := " ↑/↓ cursor  Enter detail  t track  d dismiss  o open URL  q quit"
	if m.flash != "" {
		statusText = flashStyle.Render(" "+m.flash) + " |" + statusText
	}
	if m.errorMsg != "" {
		statusText = errorStyle.Render(" "+m.errorMsg) + " |" + statusText
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + pane + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Match Details")

	border := borderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusText := " t track  d dismiss  o open URL  p proposal  esc back  ↑/↓ scroll  q quit"
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) renderDetail() string {
	j := m.detailJob
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.Company)
	addField("Source", j.Source)
	addField("Score", fmt.Sprintf("%d/100", j.RelevanceScore))
	if j.BudgetMax > 0 {
		currency := j.Currency
		if currency == "" {
			currency = "USD"
		}
		addField("Budget", fmt.Sprintf("%.0f - %.0f %s", j.BudgetMin, j.BudgetMax, currency))
	}
	addField("Location", j.Location)
	if j.PostedAt != nil {
		addField("Posted", j.PostedAt.Format("2006-01-02 15:04 MST"))
	}
	if len(j.Skills) > 0 {
		addField("Skills", strings.Join(j.Skills, ", "))
	}

	b.WriteByte('\n')
	addField("URL", j.URL)

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	if j.Reasoning != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Why It Matched ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(j.Reasoning, wrapWidth)) + "\n")
	}
	if j.GapAnalysis != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Gap Analysis ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(j.GapAnalysis, wrapWidth)) + "\n")
	}

	b.WriteByte('\n')
	if m.proposalShown && m.proposal != "" {
		b.WriteString(divider("── Draft Proposal ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(m.proposal, wrapWidth)) + "\n")
	} else if m.proposalMissing {
		b.WriteString(hintStyle.Render("  no proposal drafted for this match") + "\n")
	} else {
		b.WriteString(hintStyle.Render("  press p to view the draft proposal") + "\n")
	}

	if j.Description != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Description ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(j.Description, wrapWidth)) + "\n")
	}

	return b.String()
}

func renderMatches(matches []model.Job, cursor int) string {
	if len(matches) == 0 {
		return "  (no pending matches — run hunt first)"
	}

	var b strings.Builder
	for i, j := range matches {
		isSelected := i == cursor

		titleSt := matchTitleStyle
		subtitleSt := matchSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		score := fmt.Sprintf("[%d]", j.RelevanceScore)
		if j.RelevanceScore >= 90 && !isSelected {
			score = hotScoreStyle.Render(score)
		}

		b.WriteString(prefix)
		b.WriteString(score + " ")
		b.WriteString(titleSt.Render(j.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s", j.Source, companyOr(j.Company, "unknown company"))))
		b.WriteByte('\n')

		if i < len(matches)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func companyOr(company, def string) string {
	if company == "" {
		return def
	}
	return company
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunReviewTUI launches the interactive match review TUI. Matches stay pending
// until the user explicitly tracks or dismisses them; only those actions touch
// the seen-job history.
func RunReviewTUI(queue MatchQueue) error {
	matches, err := queue.Matches()
	if err != nil {
		return fmt.Errorf("load matches: %w", err)
	}

	m := reviewModel{
		queue:   queue,
		matches: matches,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
