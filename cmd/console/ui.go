package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/hunt-engine/pkg/engine"
	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/state"
)

const PlaceHolderText = "Type the code word here..."

// overlayTickInterval drives the reveal countdown animation.
const overlayTickInterval = 100 * time.Millisecond

// ConsoleUI is the BubbleTea model that runs the player client.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config  *ConsoleConfig
	client  *http.Client
	session *SessionState
	hunt    *hunt.Hunt // definition for location names; nil until loaded

	input   textinput.Model
	ready   bool
	width   int
	height  int
	err     error
	loading bool

	// Hunt selection state
	showHuntModal bool
	loadingHunts  bool
	hunts         []string
	huntMap       map[string]string
	selectedHunt  int

	// Reveal overlay state
	revealActive    bool
	reveal          *state.RevealPayload
	revealRemaining time.Duration
	revealDwell     time.Duration

	// Transient line under the riddle, pre-rendered with its style
	feedback string

	// Visited locations in step order, grown from reveals
	visited []string

	// Quit confirmation state
	showQuitModal bool

	// Event stream plumbing
	events    chan SSEEvent
	cancelSSE context.CancelFunc
}

type huntsLoadedMsg struct {
	hunts   []string
	huntMap map[string]string
	err     error
}

type sessionStartedMsg struct {
	session *SessionState
	err     error
}

type huntLoadedMsg struct {
	def *hunt.Hunt
	err error
}

type submitResultMsg struct {
	result *engine.SubmitResult
	err    error
}

type sessionActionMsg struct {
	session *SessionState
	action  string
	err     error
}

type sessionRefreshedMsg struct {
	session *SessionState
	err     error
}

type sseEventMsg struct {
	event SSEEvent
}

type sseClosedMsg struct{}

type overlayTickMsg struct{}

type clipboardMsg struct {
	err error
}

var (
	riddlePanelStyle = lipgloss.NewStyle().
				PaddingTop(2).
				PaddingBottom(1).
				PaddingLeft(3).
				PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	riddleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	visitedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, session *SessionState) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 200
	ti.Width = 50

	return ConsoleUI{
		config:        cfg,
		client:        client,
		session:       session,
		input:         ti,
		showHuntModal: session == nil,
		loadingHunts:  session == nil,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showHuntModal {
		return m.loadHunts()
	}

	// Resumed session: run it through the same startup path a fresh
	// session takes.
	session := m.session
	return func() tea.Msg {
		return sessionStartedMsg{session: session}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Messages that matter regardless of which modal is up.
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		riddleWidth := int(float64(m.width)*0.7) - 4
		m.input.Width = riddleWidth - 6
		return m, nil

	case sessionStartedMsg:
		return m.handleSessionStarted(msg)

	case huntLoadedMsg:
		if msg.err != nil {
			// Location names degrade to raw ids.
			return m, nil
		}
		m.hunt = msg.def
		if m.session != nil {
			m.visited = m.hunt.VisitedLocations(m.session.View.StepIndex)
		}
		return m, nil

	case sseEventMsg:
		return m.handleEvent(msg.event)

	case sseClosedMsg:
		m.feedback = errorStyle.Render("Event stream closed. Render directives will no longer arrive.")
		return m, nil

	case overlayTickMsg:
		if !m.revealActive {
			return m, nil
		}
		m.revealRemaining -= overlayTickInterval
		if m.revealRemaining <= 0 {
			// Local auto-dismiss mirrors the server's overlay dwell.
			m.revealActive = false
			m.reveal = nil
			return m, nil
		}
		return m, overlayTick()
	}

	if m.showHuntModal {
		return m.updateHuntModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	return m.updateMain(msg)
}

// handleSessionStarted wires up a session: event stream subscription,
// hunt definition fetch, input focus.
func (m ConsoleUI) handleSessionStarted(msg sessionStartedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	m.session = msg.session
	m.showHuntModal = false
	m.err = nil
	m.visited = []string{m.session.View.LocationID}

	ch := make(chan SSEEvent, 16)
	ctx, cancel := context.WithCancel(context.Background())
	m.events = ch
	m.cancelSSE = cancel

	baseURL := m.config.APIBaseURL
	sessionID := m.session.ID
	go func() {
		_ = listenToSSE(ctx, baseURL, sessionID, ch)
		close(ch)
	}()

	m.input.Focus()
	return m, tea.Batch(
		m.loadHuntDef(m.session.View.HuntFile),
		waitForSSE(ch),
		textinput.Blink,
	)
}

// handleEvent applies one render directive from the event stream.
func (m ConsoleUI) handleEvent(event SSEEvent) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForSSE(m.events)}

	switch event.Type {
	case "reveal.opened":
		// Our own submissions open the overlay synchronously from the
		// response; this path covers directives raised elsewhere.
		if !m.revealActive {
			m.openReveal(revealFromEvent(event.Data), engine.DefaultOverlayDwell)
			cmds = append(cmds, overlayTick())
		}

	case "reveal.closed":
		m.revealActive = false
		m.reveal = nil

	case "step.advanced", "session.reset", "session.jumped":
		m.revealActive = false
		m.reveal = nil
		cmds = append(cmds, m.refreshSession())
	}

	return m, tea.Batch(cmds...)
}

func (m ConsoleUI) updateMain(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			answer := strings.TrimSpace(m.input.Value())
			if answer == "" {
				return m, nil
			}
			m.input.Reset()
			m.loading = true
			return m, m.submit(answer)

		case tea.KeyCtrlN:
			return m, m.sessionAction("narration")

		case tea.KeyCtrlW:
			return m, m.sessionAction("whisper")

		case tea.KeyCtrlY:
			return m, m.copySessionID()
		}

	case submitResultMsg:
		m.loading = false
		if msg.err != nil {
			m.feedback = errorStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.session.View = msg.result.View
		switch msg.result.Outcome {
		case engine.OutcomeAdvanced:
			m.feedback = ""
			m.openReveal(msg.result.Reveal, time.Duration(msg.result.OverlayDwellMS)*time.Millisecond)
			return m, overlayTick()
		case engine.OutcomeRejected:
			m.feedback = errorStyle.Render("Not quite. That is not the word this place is waiting for.")
		case engine.OutcomeWhisper:
			m.feedback = infoStyle.Render("You have reached the end. The narrator answers with a whisper.")
		case engine.OutcomeIgnored:
			m.feedback = hintStyle.Render("The map is still revealing. Hold on.")
		}
		return m, nil

	case sessionActionMsg:
		if msg.err != nil {
			m.feedback = errorStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.session = msg.session
		switch {
		case msg.action == "narration":
			m.feedback = infoStyle.Render("Narration unlocked. The house has found its voice.")
		case !msg.session.View.NarrationUnlocked:
			m.feedback = hintStyle.Render("Narration is muted. Press Ctrl+N to unlock it first.")
		default:
			m.feedback = infoStyle.Render("A whisper floats through the speakers...")
		}
		return m, nil

	case sessionRefreshedMsg:
		if msg.err == nil && msg.session != nil {
			m.session = msg.session
			if m.hunt != nil {
				m.visited = m.hunt.VisitedLocations(m.session.View.StepIndex)
			}
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.feedback = errorStyle.Render("Clipboard unavailable: " + msg.err.Error())
		} else {
			m.feedback = infoStyle.Render("Session id copied. Resume later with HUNT_SESSION=" + shortID(m.session.ID.String()) + "...")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateHuntModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case huntsLoadedMsg:
		m.loadingHunts = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.hunts = msg.hunts
			m.huntMap = msg.huntMap
		}

	case tea.KeyMsg:
		if m.loadingHunts || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedHunt > 0 {
				m.selectedHunt--
			}
		case tea.KeyDown:
			if m.selectedHunt < len(m.hunts)-1 {
				m.selectedHunt++
			}
		case tea.KeyEnter:
			if len(m.hunts) > 0 && !m.loading {
				huntFile := m.huntMap[m.hunts[m.selectedHunt]]
				m.loading = true
				return m, m.startSession(huntFile)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, m.quit()
		default:
			switch msg.String() {
			case "y", "Y":
				return m, m.quit()
			case "n", "N":
				m.showQuitModal = false
				if !m.showHuntModal {
					m.input.Focus()
					return m, textinput.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

// quit tears down the event stream before stopping the program.
func (m ConsoleUI) quit() tea.Cmd {
	if m.cancelSSE != nil {
		m.cancelSSE()
	}
	return tea.Quit
}

// openReveal shows the overlay for a reveal payload and starts the
// countdown.
func (m *ConsoleUI) openReveal(p *state.RevealPayload, dwell time.Duration) {
	if p == nil {
		return
	}
	if dwell <= 0 {
		dwell = engine.DefaultOverlayDwell
	}
	m.revealActive = true
	m.reveal = p
	m.revealDwell = dwell
	m.revealRemaining = dwell
	m.visited = append([]string(nil), p.VisitedLocationIDs...)
}

// revealFromEvent rebuilds a reveal payload from SSE event data.
func revealFromEvent(data map[string]interface{}) *state.RevealPayload {
	p := &state.RevealPayload{}
	if v, ok := data["current_location_id"].(string); ok {
		p.CurrentLocationID = v
	}
	if vs, ok := data["visited_location_ids"].([]interface{}); ok {
		for _, v := range vs {
			if s, ok := v.(string); ok {
				p.VisitedLocationIDs = append(p.VisitedLocationIDs, s)
			}
		}
	}
	if b, ok := data["terminal_unlock"].(bool); ok {
		p.TerminalUnlock = b
	}
	return p
}

func (m ConsoleUI) locationName(id string) string {
	if m.hunt != nil {
		if loc, ok := m.hunt.Locations[id]; ok && loc.Name != "" {
			return loc.Name
		}
	}
	return id
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Commands

func (m ConsoleUI) loadHunts() tea.Cmd {
	client, baseURL := m.client, m.config.APIBaseURL
	return func() tea.Msg {
		names, huntMap, err := listHunts(client, baseURL)
		return huntsLoadedMsg{names, huntMap, err}
	}
}

func (m ConsoleUI) startSession(huntFile string) tea.Cmd {
	client, baseURL := m.client, m.config.APIBaseURL
	return func() tea.Msg {
		session, err := createSession(client, baseURL, huntFile)
		return sessionStartedMsg{session, err}
	}
}

func (m ConsoleUI) loadHuntDef(huntFile string) tea.Cmd {
	client, baseURL := m.client, m.config.APIBaseURL
	return func() tea.Msg {
		def, err := getHunt(client, baseURL, huntFile)
		return huntLoadedMsg{def, err}
	}
}

func (m ConsoleUI) submit(answer string) tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.session.ID
	return func() tea.Msg {
		result, err := submitAnswer(client, baseURL, id, answer)
		return submitResultMsg{result, err}
	}
}

func (m ConsoleUI) sessionAction(action string) tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.session.ID
	return func() tea.Msg {
		session, err := postSessionAction(client, baseURL, id, action)
		return sessionActionMsg{session, action, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	client, baseURL, id := m.client, m.config.APIBaseURL, m.session.ID
	return func() tea.Msg {
		session, err := getSession(client, baseURL, id)
		return sessionRefreshedMsg{session, err}
	}
}

func (m ConsoleUI) copySessionID() tea.Cmd {
	id := m.session.ID.String()
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(id)}
	}
}

func waitForSSE(ch <-chan SSEEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return sseClosedMsg{}
		}
		return sseEventMsg{event}
	}
}

func overlayTick() tea.Cmd {
	return tea.Tick(overlayTickInterval, func(time.Time) tea.Msg {
		return overlayTickMsg{}
	})
}

// Views

func (m ConsoleUI) View() string {
	if m.showHuntModal {
		return m.renderHuntModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready || m.session == nil {
		return "\n  Initializing..."
	}
	if m.revealActive && m.reveal != nil {
		return m.renderRevealOverlay()
	}

	riddleWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - riddleWidth - 6

	riddlePanel := riddlePanelStyle.Width(riddleWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.writeRiddleContent(riddleWidth-6),
			"",
			separatorStyle.Render(strings.Repeat("─", max(riddleWidth-4, 1))),
			m.input.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.writeMetadata(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, riddlePanel, metaPanel)
}

func (m ConsoleUI) writeRiddleContent(width int) string {
	view := m.session.View

	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(view.Hunt)) + "\n\n")
	content.WriteString(fmt.Sprintf("Step %d of %d", view.StepIndex+1, view.StepCount))
	if view.Title != "" {
		content.WriteString(" · " + view.Title)
	}
	content.WriteString("\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-2, 1))) + "\n\n")

	content.WriteString(riddleStyle.Render(wordwrap.String(view.Riddle, width)) + "\n\n")

	if view.LocationHint != "" {
		content.WriteString(hintStyle.Render(wordwrap.String("Hint: "+view.LocationHint, width)) + "\n\n")
	}

	if view.IsTerminal {
		content.WriteString(infoStyle.Render("This is the final step of the hunt.") + "\n\n")
	}

	if m.feedback != "" {
		content.WriteString(m.feedback + "\n")
	}
	if m.loading {
		content.WriteString(hintStyle.Render("Checking...") + "\n")
	}

	return content.String()
}

func (m ConsoleUI) writeMetadata() string {
	view := m.session.View

	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(shortID(m.session.ID.String()) + "...\n\n")

	content.WriteString("Hunt:\n")
	content.WriteString(view.HuntFile + "\n\n")

	content.WriteString("Progress:\n")
	content.WriteString(renderProgress(view.ProgressFraction, 16) + "\n\n")

	if view.NarrationUnlocked {
		content.WriteString("Narration: on\n\n")
	} else {
		content.WriteString("Narration: muted\n\n")
	}

	if m.hunt != nil && m.hunt.OutdoorUnlockStep > 0 {
		if m.hunt.OutdoorUnlocked(view.StepID) {
			content.WriteString("Outdoor map: open\n\n")
		} else {
			content.WriteString("Outdoor map: locked\n\n")
		}
	}

	content.WriteString("Visited:\n")
	for _, id := range m.visited {
		content.WriteString(visitedStyle.Render("• "+m.locationName(id)) + "\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Submit answer\n")
	content.WriteString("• Ctrl+N: Unlock narration\n")
	content.WriteString("• Ctrl+W: Ask for a whisper\n")
	content.WriteString("• Ctrl+Y: Copy session id\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) renderRevealOverlay() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("THE MAP REVEALS"))
	content.WriteString("\n\n")
	content.WriteString("Next destination: " + titleStyle.Render(m.locationName(m.reveal.CurrentLocationID)))
	content.WriteString("\n\n")

	for _, id := range m.reveal.VisitedLocationIDs {
		marker := "•"
		if id == m.reveal.CurrentLocationID {
			marker = "→"
		}
		content.WriteString(visitedStyle.Render(fmt.Sprintf("%s %s", marker, m.locationName(id))) + "\n")
	}

	if m.reveal.TerminalUnlock {
		content.WriteString("\n" + infoStyle.Render("The grounds beyond the house are now open."))
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render(fmt.Sprintf("The trail fades in %.1fs", m.revealRemaining.Seconds())))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderHuntModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingHunts {
		content.WriteString(modalTitleStyle.Render("Loading Hunts..."))
		content.WriteString("\n\n")
		content.WriteString(infoStyle.Render("Please wait while we fetch available hunts..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to start: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Starting Hunt..."))
		content.WriteString("\n\n")
		content.WriteString(infoStyle.Render("Laying out the map..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Hunt"))
		content.WriteString("\n\n")

		for i, name := range m.hunts {
			if i == m.selectedHunt {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", name)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", name)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Hunt?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved. Copy the session id (Ctrl+Y)\nto resume later with HUNT_SESSION.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(56).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

// renderProgress draws a determinate progress bar for a 0..1 fraction.
func renderProgress(fraction float64, width int) string {
	if width < 4 {
		width = 4
	}
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	filled := int(fraction*float64(width) + 0.5)
	var bar strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}
