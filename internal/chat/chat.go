// Package chat is the interactive terminal client over the query engine.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"courserag/internal/model"
	"courserag/internal/rag"
)

var (
	clrBrand  = lipgloss.Color("75")
	clrSubtle = lipgloss.Color("245")

	brandStyle = lipgloss.NewStyle().Foreground(clrBrand)
	dimStyle   = lipgloss.NewStyle().Foreground(clrSubtle)
	userStyle  = lipgloss.NewStyle().Foreground(clrBrand).Bold(true)
)

// Run starts the chat loop and blocks until the user quits.
func Run(ctx context.Context, system *rag.System) error {
	program := tea.NewProgram(initialModel(ctx, system), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type answerMsg struct {
	answer  string
	sources []model.Source
	quit    bool
	clear   bool
}

type chatModel struct {
	system    *rag.System
	ctx       context.Context
	sessionID string

	viewport  viewport.Model
	textInput textinput.Model
	spinner   spinner.Model
	messages  []string
	isLoading bool
	ready     bool
	width     int
	height    int
}

func initialModel(ctx context.Context, system *rag.System) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about a course or type /help..."
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = brandStyle

	return chatModel{
		system:    system,
		ctx:       ctx,
		sessionID: system.CreateSession(),
		textInput: ti,
		spinner:   sp,
		messages:  []string{brandStyle.Render("courserag") + dimStyle.Render(" - ask about your courses")},
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textInput, tiCmd = m.textInput.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}
			m.textInput.SetValue("")

			m.messages = append(m.messages, userStyle.Render("you> ")+input)
			m.isLoading = true
			m.refreshViewport()
			return m, tea.Batch(m.processInputCmd(input), m.spinner.Tick)
		}

	case tea.WindowSizeMsg:
		m.applyWindowSize(msg.Width, msg.Height)

	case answerMsg:
		m.isLoading = false
		if msg.quit {
			return m, tea.Quit
		}
		if msg.clear {
			m.messages = m.messages[:1]
			m.refreshViewport()
			return m, nil
		}
		m.messages = append(m.messages, renderAnswer(msg))
		m.refreshViewport()
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m chatModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.isLoading {
		b.WriteString(m.spinner.View() + " ")
	} else {
		b.WriteString(userStyle.Render("you> "))
	}
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("/help commands  esc quit"))
	return b.String()
}

func (m *chatModel) refreshViewport() {
	m.viewport.SetContent(strings.Join(m.messages, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *chatModel) applyWindowSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height

	vpWidth := max(width-2, 1)
	m.textInput.Width = max(width-16, 1)
	vpHeight := max(height-3, 1)

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.viewport.SetContent(strings.Join(m.messages, "\n\n"))
		m.ready = true
		return
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
}

func (m *chatModel) processInputCmd(input string) tea.Cmd {
	return func() tea.Msg {
		switch {
		case input == "/quit" || input == "/exit":
			return answerMsg{quit: true}
		case input == "/clear":
			return answerMsg{clear: true}
		case input == "/help":
			return answerMsg{answer: helpText()}
		case input == "/courses":
			return m.coursesMsg()
		}

		answer, sources := m.system.Query(m.ctx, input, m.sessionID)
		return answerMsg{answer: answer, sources: sources}
	}
}

func (m *chatModel) coursesMsg() tea.Msg {
	analytics, err := m.system.Analytics(m.ctx)
	if err != nil {
		return answerMsg{answer: "Failed to load course catalog: " + err.Error()}
	}
	if analytics.TotalCourses == 0 {
		return answerMsg{answer: "No courses in the catalog yet."}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d course(s):\n", analytics.TotalCourses)
	for _, title := range analytics.CourseTitles {
		b.WriteString("  - " + title + "\n")
	}
	return answerMsg{answer: strings.TrimRight(b.String(), "\n")}
}

func renderAnswer(msg answerMsg) string {
	out := msg.answer
	if len(msg.sources) > 0 {
		rendered := make([]string, 0, len(msg.sources))
		for _, source := range msg.sources {
			label := source.Title
			if source.LessonNumber > 0 {
				label = fmt.Sprintf("%s - Lesson %d", source.Title, source.LessonNumber)
			}
			rendered = append(rendered, label)
		}
		out += "\n" + dimStyle.Render("Sources: "+strings.Join(rendered, ", "))
	}
	return out
}

func helpText() string {
	return strings.Join([]string{
		"/help - Show help",
		"/courses - List courses in the catalog",
		"/clear - Clear chat history",
		"/quit - Exit",
		"Any other text is answered from the course materials.",
	}, "\n")
}
