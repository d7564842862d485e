package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/ruleta/internal/engine"
	"github.com/lox/ruleta/internal/history"
	"github.com/lox/ruleta/internal/table"
	"github.com/lox/ruleta/internal/wheel"
)

// Croupier is the table the terminal plays against
type Croupier interface {
	Snapshot() engine.Snapshot
	Stats() history.Stats
	PlaceBet(bet table.Bet) (engine.Snapshot, error)
	PlaceChip(category table.Category, numbers []wheel.Number) (engine.Snapshot, error)
	ClearBets() (engine.Snapshot, error)
	SelectChip(amount int) error
	Spin() error
	ResetRound() (engine.Snapshot, error)
	ResetBalance() engine.Snapshot
}

// TUIModel represents the Bubble Tea model for the roulette table
type TUIModel struct {
	table  Croupier
	events <-chan engine.Event
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	snapshot    engine.Snapshot
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// eventMsg delivers one engine event to Update
type eventMsg engine.Event

// eventsClosedMsg signals that the engine has shut down
type eventsClosedMsg struct{}

// NewTUIModel creates a new TUI model playing at croupier
func NewTUIModel(croupier Croupier, events <-chan engine.Event, logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(croupier, events, logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option
func NewTUIModelWithOptions(croupier Croupier, events <-chan engine.Event, logger *log.Logger, testMode bool) *TUIModel {
	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet red, bet 17 500, bet split 17 20, spin, help"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		table:       croupier,
		events:      events,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		gameLog:     []string{},
		snapshot:    croupier.Snapshot(),
		focusedPane: 1,
		testMode:    testMode,
		capturedLog: []string{},
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

// waitForEvent returns a command that blocks for the next engine event
func (m *TUIModel) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case eventMsg:
		m.HandleEvent(engine.Event(msg))
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if m.Execute(input) {
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Execute runs one line of input against the table and reports whether the
// player asked to quit.
func (m *TUIModel) Execute(input string) bool {
	cmd, err := ParseCommand(input)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return false
	}
	m.logger.Debug("Command", "name", cmd.Name, "category", cmd.Category, "amount", cmd.Amount)

	switch cmd.Name {
	case "bet":
		if cmd.Amount == 0 {
			_, err = m.table.PlaceChip(cmd.Category, cmd.Numbers)
		} else {
			var bet table.Bet
			bet, err = table.NewBet(cmd.Category, cmd.Numbers, cmd.Amount)
			if err == nil {
				_, err = m.table.PlaceBet(bet)
			}
		}
	case "chip":
		err = m.table.SelectChip(cmd.Amount)
	case "spin":
		err = m.table.Spin()
	case "clear":
		_, err = m.table.ClearBets()
	case "reset":
		_, err = m.table.ResetRound()
	case "rebuy":
		m.table.ResetBalance()
	case "stats":
		m.AddLogEntry(renderStats(m.table.Stats()))
	case "help":
		m.AddLogEntry(helpText)
	case "quit":
		m.quitting = true
		return true
	}

	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(describeError(err)))
	}
	m.snapshot = m.table.Snapshot()
	return false
}

// describeError turns engine errors into player-facing text
func describeError(err error) string {
	switch {
	case errors.Is(err, table.ErrInsufficientBalance):
		return "Not enough balance: " + err.Error()
	case errors.Is(err, table.ErrBettingClosed):
		return "No more bets: " + err.Error()
	case errors.Is(err, table.ErrNoActiveBets):
		return "Place a bet before spinning"
	default:
		return err.Error()
	}
}

// HandleEvent updates the display for one engine event
func (m *TUIModel) HandleEvent(ev engine.Event) {
	m.snapshot = ev.Snapshot

	switch ev.Type {
	case engine.EventRoundStart:
		if ev.Refund > 0 {
			m.AddLogEntry(fmt.Sprintf("Bets refunded: $%d", ev.Refund))
		}
		m.AddBoldLogEntry(fmt.Sprintf("Round %d: place your bets (%ds)", ev.Snapshot.Round, ev.Snapshot.BettingSecondsRemaining))
	case engine.EventLastCall:
		m.AddLogEntry(WarningStyle.Render(fmt.Sprintf("Last call, %d seconds left", ev.Snapshot.BettingSecondsRemaining)))
	case engine.EventBettingClosed:
		m.AddLogEntry(WarningStyle.Render("No more bets"))
	case engine.EventBetPlaced:
		if ev.Bet != nil {
			m.AddLogEntry(fmt.Sprintf("Bet $%d on %s", ev.Bet.Amount, ev.Bet.Position))
		}
	case engine.EventBetsCleared:
		if ev.Refund > 0 {
			m.AddLogEntry(fmt.Sprintf("Bets cleared, $%d returned", ev.Refund))
		}
	case engine.EventChipSelected:
		m.AddLogEntry(fmt.Sprintf("Chip $%d selected", ev.Snapshot.SelectedChip))
	case engine.EventSpinStart:
		m.AddLogEntry(PhaseStyle.Render(fmt.Sprintf("Spinning with $%d on the table...", ev.Snapshot.TotalStaked)))
	case engine.EventSettled:
		if ev.Settlement != nil {
			m.AddLogEntry(describeSettlement(*ev.Settlement))
		}
	case engine.EventBalanceReset:
		m.AddBoldLogEntry(fmt.Sprintf("Balance reset to $%d", ev.Snapshot.Balance))
	}
}

func describeSettlement(s table.Settlement) string {
	line := fmt.Sprintf("Ball lands on %s %s. ", numberStyle(s.Winning), s.Color)
	switch net := s.Net(); {
	case s.TotalWinnings == 0:
		line += ErrorStyle.Render(fmt.Sprintf("Lost $%d", s.TotalStaked))
	case net >= 0:
		line += SuccessStyle.Render(fmt.Sprintf("Won $%d (net +$%d)", s.TotalWinnings, net))
	default:
		line += WarningStyle.Render(fmt.Sprintf("Returned $%d (net -$%d)", s.TotalWinnings, -net))
	}
	return line
}

func renderStats(stats history.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Red %d  Black %d  Zero %d  |  Odd %d  Even %d  |  Low %d  High %d",
		stats.Red, stats.Black, stats.Green, stats.Odd, stats.Even, stats.Low, stats.High)
	if stats.StreakLength > 0 {
		fmt.Fprintf(&b, "\nStreak: %d %s", stats.StreakLength, stats.StreakColor)
	}
	if len(stats.Hot) > 0 {
		hot := make([]string, len(stats.Hot))
		for i, h := range stats.Hot {
			hot[i] = fmt.Sprintf("%s x%d", numberStyle(h.Number), h.Count)
		}
		fmt.Fprintf(&b, "\nHot: %s", strings.Join(hot, ", "))
	}
	return b.String()
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight-2, 1))
	if m.focusedPane == 0 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#626262"))
	}
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.SetContent(m.renderLogPane())
	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight

	// Start at the top on first proper sizing
	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.logViewport.Width).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane shows balance, stakes and recent results
func (m *TUIModel) renderSidebarPane() string {
	snap := m.snapshot
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(fmt.Sprintf(" Round %d ", snap.Round)))
	content.WriteString("\n\n")
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", snap.Balance)))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Staked:  $%d\n", snap.TotalStaked))
	content.WriteString(fmt.Sprintf("Chip:    $%d\n\n", snap.SelectedChip))

	if len(snap.PositionTotals) > 0 {
		content.WriteString(InfoStyle.Render("Bets:"))
		content.WriteString("\n")
		for _, p := range snap.PositionTotals {
			content.WriteString(fmt.Sprintf("  %s $%d\n", p.Position, p.Amount))
		}
		content.WriteString("\n")
	}

	content.WriteString(InfoStyle.Render("Recent:"))
	content.WriteString("\n")
	content.WriteString(renderRecent(snap.RecentResults))
	content.WriteString("\n")

	if last := snap.LastSettlement; last != nil {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Last round net: %+d", last.Net())))
	}

	return content.String()
}

// renderActionPane renders the board, phase line and input
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	content.WriteString(renderBoard(m.snapshot.Snapshot))
	content.WriteString("\n")
	content.WriteString(m.renderPhase())
	content.WriteString("\n")
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • 'help' for commands • Ctrl+C to quit"))
	}

	return content.String()
}

func (m *TUIModel) renderPhase() string {
	snap := m.snapshot
	switch snap.Phase {
	case table.Betting:
		return PhaseStyle.Render(fmt.Sprintf("Place your bets: %ds", snap.BettingSecondsRemaining))
	case table.Locked:
		return WarningStyle.Render("No more bets. Spin when ready")
	case table.Spinning:
		return PhaseStyle.Render("The wheel is spinning...")
	case table.Settled:
		if snap.WinningNumber != nil {
			return PhaseStyle.Render("Winning number: ") + numberStyle(*snap.WinningNumber)
		}
	}
	return ""
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// AddBoldLogEntry adds a bold separator entry to the game log
func (m *TUIModel) AddBoldLogEntry(entry string) {
	bold := lipgloss.NewStyle().Bold(true).Render(entry)
	m.gameLog = append(m.gameLog, bold)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Snapshot returns the state the TUI is currently showing
func (m *TUIModel) Snapshot() engine.Snapshot {
	return m.snapshot
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
