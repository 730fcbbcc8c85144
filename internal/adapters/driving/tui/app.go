package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/pdfiq/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pdfiq/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pdfiq/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfiq/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfiq/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// Rows used by everything except the transcript.
const (
	headerHeight = 2
	inputHeight  = 3
	statusHeight = 1
)

// entry is one exchange in the transcript.
type entry struct {
	question  string
	answer    string
	downloads domain.Downloads
	pending   bool
	failed    bool
}

// App is the chat screen. It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input      *input.QuestionInput
	transcript viewport.Model
	status     *status.Bar

	sessionID    string
	downloadBase string
	entries      []entry
	thinking     bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the chat screen with a fresh session.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 10),
		status:     status.NewBar(s, km),
		sessionID:  uuid.NewString(),
	}, nil
}

// WithContext sets the context for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithSession continues an existing conversation.
func (a *App) WithSession(id string) *App {
	if id != "" {
		a.sessionID = id
	}
	return a
}

// WithDownloadBase prefixes download links, e.g. with the web server URL.
func (a *App) WithDownloadBase(base string) *App {
	a.downloadBase = strings.TrimSuffix(base, "/")
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("PDF-IQ"),
		a.loadDocuments(),
		a.loadStats(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.AnswerReceived:
		a.thinking = false
		a.finishEntry(msg)
		a.refresh()
		return a, a.loadStats()

	case messages.MemoryCleared:
		if msg.Err != nil {
			a.status.SetState(status.StateError)
			a.status.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.entries = nil
		a.status.SetState(status.StateReady)
		a.status.SetMessage("memory cleared")
		a.refresh()
		return a, a.loadStats()

	case messages.DocumentsLoaded:
		if msg.Err == nil {
			a.status.SetDocuments(len(msg.Documents))
		}
		return a, nil

	case messages.StatsLoaded:
		if msg.Err == nil {
			a.status.SetMemory(msg.Stats.Count, msg.Stats.MaxSize)
		}
		return a, nil
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.ClearMemory):
		return a, a.clearMemory()

	case keymap.Matches(keyStr, a.keymap.ScrollUp), keymap.Matches(keyStr, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case keymap.Matches(keyStr, a.keymap.Ask):
		if a.thinking {
			return a, nil
		}
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.input.Reset()
		a.thinking = true
		a.entries = append(a.entries, entry{question: question, pending: true})
		a.status.SetState(status.StateThinking)
		a.status.SetMessage("")
		a.refresh()
		return a, a.ask(question)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// finishEntry fills in the pending exchange.
func (a *App) finishEntry(msg messages.AnswerReceived) {
	i := len(a.entries) - 1
	if i < 0 || !a.entries[i].pending {
		a.entries = append(a.entries, entry{question: msg.Question})
		i = len(a.entries) - 1
	}
	e := &a.entries[i]
	e.pending = false

	if msg.Err != nil {
		e.answer = domain.MessagePipelineError
		e.failed = true
		a.status.SetState(status.StateError)
		a.status.SetMessage(msg.Err.Error())
		return
	}
	e.answer = msg.Result.Response
	e.downloads = msg.Result.Downloads
	a.status.SetState(status.StateReady)
}

func (a *App) ask(question string) tea.Cmd {
	ctx, id := a.ctx, a.sessionID
	return func() tea.Msg {
		result, err := a.ports.Ask.Ask(ctx, id, question)
		return messages.AnswerReceived{Question: question, Result: result, Err: err}
	}
}

func (a *App) clearMemory() tea.Cmd {
	if a.ports.Memory == nil {
		return nil
	}
	ctx, id := a.ctx, a.sessionID
	return func() tea.Msg {
		return messages.MemoryCleared{Err: a.ports.Memory.Clear(ctx, id)}
	}
}

func (a *App) loadDocuments() tea.Cmd {
	if a.ports.Documents == nil {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		docs, err := a.ports.Documents.List(ctx, domain.FolderUploads)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (a *App) loadStats() tea.Cmd {
	if a.ports.Memory == nil {
		return nil
	}
	ctx, id := a.ctx, a.sessionID
	return func() tea.Msg {
		stats, err := a.ports.Memory.Stats(ctx, id)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// refresh re-renders the transcript and keeps the newest exchange visible.
func (a *App) refresh() {
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.entries) == 0 {
		return a.styles.Muted.Render("Ask a question about your uploaded PDFs.")
	}

	width := a.transcript.Width
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, e := range a.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(a.styles.Question.Render(wrap.Render("You: " + e.question)))
		b.WriteString("\n")

		switch {
		case e.pending:
			b.WriteString(a.styles.Muted.Render("Thinking..."))
		case e.failed:
			b.WriteString(a.styles.Error.Render(wrap.Render(e.answer)))
		default:
			b.WriteString(a.styles.Answer.Render(wrap.Render(e.answer)))
		}

		if e.downloads.Original != "" {
			b.WriteString("\n" + a.styles.Link.Render("Original: "+a.downloadBase+e.downloads.Original))
		}
		if e.downloads.Summary != "" {
			b.WriteString("\n" + a.styles.Link.Render("Summary: "+a.downloadBase+e.downloads.Summary))
		}
	}
	return b.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("PDF-IQ") + "  " +
		a.styles.Muted.Render("session "+shortID(a.sessionID))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		a.transcript.View(),
		a.input.View(),
		a.status.View(),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// SetDimensions lays the screen out for the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.input.SetWidth(width)
	a.status.SetWidth(width)

	body := height - headerHeight - inputHeight - statusHeight
	if body < 3 {
		body = 3
	}
	a.transcript.Width = width
	a.transcript.Height = body
	a.refresh()
}

// SessionID returns the conversation this screen writes to.
func (a *App) SessionID() string {
	return a.sessionID
}

// Thinking reports whether a question is in flight.
func (a *App) Thinking() bool {
	return a.thinking
}

// Ready returns whether the app has been laid out.
func (a *App) Ready() bool {
	return a.ready
}
