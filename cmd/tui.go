package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/suderio/dicebot/internal/character"
	"github.com/suderio/dicebot/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F25D94"))

	sheetBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))
)

const welcome = "Welcome to dicebot!\nType 'help' for commands and 'exit' to quit."

var baseCmds = []string{
	"roll ", "roll add ", "roll check ", "roll list", "roll remove ", "roll inspect ",
	"var set ", "var check ", "var list", "var remove ",
	"initiative set ", "initiative check", "initiative list", "initiative remove", "initiative removeall",
	"iam ", "whoami", "history", "help ", "exit", "quit",
}

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

type replModel struct {
	ctx         context.Context
	app         *app
	from        session.Sender
	textInput   textinput.Model
	viewport    viewport.Model
	suggestions list.Model
	history     []string
	historyIdx  int
	logContent  string
	sheet       string
	names       []string // saved rolls and variables, for completion
	width       int
	height      int
	showList    bool
}

func newREPLModel(ctx context.Context, a *app, from session.Sender) replModel {
	ti := textinput.New()
	ti.Placeholder = "Enter command (e.g., roll 1d20+3)..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	vp := viewport.New(0, 0)
	vp.SetContent(welcome)

	// Configure a minimalist list for autocomplete
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7) // Show up to 7 items
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false) // We filter manually
	sugList.SetShowHelp(false)

	m := replModel{
		ctx:         ctx,
		app:         a,
		from:        from,
		textInput:   ti,
		viewport:    vp,
		suggestions: sugList,
		history:     []string{},
		historyIdx:  -1,
		logContent:  welcome,
	}
	m.refreshSheet()
	return m
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

// refreshSheet reloads the sender's character after every command.
func (m *replModel) refreshSheet() {
	m.names = nil
	c, err := m.app.chars.ForUser(m.ctx, m.from.Server, m.from.User)
	if errors.Is(err, character.ErrNotFound) {
		m.sheet = "No character yet.\nUse 'iam <name>' to create one."
		return
	}
	if err != nil {
		m.sheet = errorStyle.Render(err.Error())
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s ===\n", c))

	rolls, err := m.app.chars.Rolls(m.ctx, c)
	if err != nil {
		m.sheet = errorStyle.Render(err.Error())
		return
	}
	sb.WriteString("\nRolls:\n")
	if len(rolls) == 0 {
		sb.WriteString(" none\n")
	}
	for _, r := range rolls {
		sb.WriteString(fmt.Sprintf(" - %s\n", r))
		m.names = append(m.names, r.Name)
	}

	vars, err := m.app.chars.Variables(m.ctx, c)
	if err != nil {
		m.sheet = errorStyle.Render(err.Error())
		return
	}
	sb.WriteString("\nVariables:\n")
	if len(vars) == 0 {
		sb.WriteString(" none\n")
	}
	for _, v := range vars {
		sb.WriteString(fmt.Sprintf(" - %s\n", v))
		m.names = append(m.names, v.Name)
	}
	m.sheet = strings.TrimRight(sb.String(), "\n")
}

func (m *replModel) updateSuggestions() {
	val := m.textInput.Value()
	var items []list.Item

	defer func() {
		m.suggestions.SetItems(items)
		m.showList = len(items) > 0
		if m.showList {
			listHeight := min(len(items), 10)
			if listHeight < 4 {
				listHeight = 4
			}
			m.suggestions.SetHeight(listHeight)
			m.suggestions.ResetSelected()
		}
	}()

	if val == "" {
		return
	}

	for _, c := range baseCmds {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(val)) && len(val) < len(c) {
			items = append(items, suggestion(c))
		}
	}

	// Complete the last word with a saved roll or variable name
	if i := strings.LastIndexAny(val, " +-*/%^()<>!~"); i >= 0 && i < len(val)-1 {
		prefix := val[i+1:]
		for _, name := range m.names {
			if strings.HasPrefix(name, prefix) && len(prefix) < len(name) {
				items = append(items, suggestion(val[:i+1]+name))
			}
		}
	}
}

func (m *replModel) execute(val string) {
	m.logContent += fmt.Sprintf("\n\n> %s\n", val)
	reply, err := m.app.session.Execute(m.ctx, m.from, val)
	if err != nil {
		m.logContent += errorStyle.Render(fmt.Sprintf("Error: %v", err))
	} else {
		m.logContent += reply
	}
	m.refreshSheet()

	m.viewport.SetContent(m.logContent)
	m.viewport.GotoBottom()
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.history) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.history[m.historyIdx])
				m.updateSuggestions()
			}

		case tea.KeyDown:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 && m.historyIdx != -1 {
				if m.historyIdx < len(m.history)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.history[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.updateSuggestions()
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.suggestions.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "exit" || val == "quit" {
				return m, tea.Quit
			}

			if val != "" {
				// Prevent duplicate history entries
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")
				m.updateSuggestions()
				m.execute(val)
			}
		default:
			// Normal typing
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.suggestions.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	// Calculate accurate heights for dynamic components
	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	sheetH := lipgloss.Height(m.renderSheet())
	inputH := 1

	listAreaHeight := 0
	if m.showList {
		listAreaHeight = m.suggestions.Height() + 2 // +2 for autocompleteStyle borders
	}

	infoH := lipgloss.Height(infoStyle.Render("Dummy"))
	paddingH := 7

	overhead := titleH + sheetH + inputH + listAreaHeight + infoH + paddingH + 4

	m.viewport.Height = max(m.height-overhead, 4)

	return m, tea.Batch(tiCmd, vpCmd, lsCmd)
}

func (m *replModel) renderSheet() string {
	return sheetBoxStyle.Width(max(m.width-4, 10)).Render(m.sheet)
}

func (m *replModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render(fmt.Sprintf(" dicebot | %s@%s ", m.from.User, m.from.Server))
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	inputArea := m.textInput.View()
	if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", inputArea, autocompleteStyle.Render(m.suggestions.View()))
	}

	mainView := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.renderSheet(),
		logBox,
		"\n",
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)

	return mainView + strings.Repeat("\n", 7)
}

// RunTUI starts the full screen REPL
func RunTUI(ctx context.Context, a *app, from session.Sender) error {
	m := newREPLModel(ctx, a, from)
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
