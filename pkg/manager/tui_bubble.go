package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// RunTUI runs the selector until the user quits. When opts.ExecReplace is set and the
// user chose a profile to connect to, that profile is returned so the caller can exec ssh
// after the terminal has been restored.
func RunTUI(store *Store, activity *ActivityLog, opts UIOptions) (*Profile, error) {
	if store == nil {
		return nil, fmt.Errorf("nil store")
	}
	profiles, rep := store.LoadWithReport()
	activity.Loaded(store.Path(), rep)

	launcher := NewExecLauncher(opts.SSHCommand, opts.Record, activity)
	m := newModel(NewState(profiles), &loggedStore{store: store, activity: activity}, launcher, activity, opts)
	if rep.Err != nil {
		m.state.Status = rep.Err.Error()
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(model); ok && fm.handoff != nil {
		return fm.handoff, nil
	}
	return nil, nil
}

// loggedStore records save failures in the activity log.
type loggedStore struct {
	store    Persister
	activity *ActivityLog
}

func (l *loggedStore) Save(profiles []Profile) error {
	err := l.store.Save(profiles)
	l.activity.SaveFailed(err)
	return err
}

type uiMode int

const (
	modeList uiMode = iota
	modeAdd
	modeConfirmDelete
)

// sessionDoneMsg arrives when the ssh child exits and the terminal is ours again.
type sessionDoneMsg struct {
	Profile Profile
	Err     error
}

type model struct {
	state    State
	store    Persister
	launcher *ExecLauncher
	activity *ActivityLog
	opts     UIOptions
	theme    Theme

	mode    uiMode
	input   textinput.Model
	addStep int
	draft   Draft

	width  int
	height int

	// handoff is set when ExecReplace is on and the user connected.
	handoff  *Profile
	quitting bool
}

func newModel(st State, store Persister, launcher *ExecLauncher, activity *ActivityLog, opts UIOptions) model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Cursor.Style = ti.Cursor.Style.Bold(true)
	ti.PromptStyle = ti.PromptStyle.Bold(true)

	return model{
		state:    st.Clamp(),
		store:    store,
		launcher: launcher,
		activity: activity,
		opts:     opts,
		theme:    opts.Theme,
		input:    ti,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.state = m.state.Clamp()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionDoneMsg:
		if msg.Err != nil {
			m.state.Status = fmt.Sprintf("ssh error: %v", msg.Err)
		} else {
			m.state.Status = "Session ended: " + msg.Profile.Name
		}
		m.activity.Connect(msg.Profile, CommandLine(msg.Profile, m.opts.SSHCommand), msg.Err)
		return m, tea.ClearScreen

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.mode == modeAdd {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) updateList(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The status line lives for one redraw.
	m.state.Status = ""
	m.state.SaveErr = nil

	kind := eventForKey(k)
	switch kind {
	case EventAdd:
		return m.beginAdd()
	case EventDelete:
		if !m.state.Empty() {
			m.mode = modeConfirmDelete
		}
		return m, nil
	case EventNone:
		return m, nil
	}

	next, effect := Dispatch(m.state, Event{Kind: kind}, m.store)
	m.state = next
	switch effect {
	case EffectQuit:
		m.quitting = true
		return m, tea.Quit
	case EffectConnect:
		return m.connect()
	}
	return m, nil
}

func (m model) connect() (tea.Model, tea.Cmd) {
	p, ok := m.state.Current()
	if !ok {
		return m, nil
	}
	if m.opts.ExecReplace {
		m.handoff = &p
		m.quitting = true
		return m, tea.Quit
	}
	if m.launcher == nil {
		m.state.Status = "ssh error: no launcher"
		return m, nil
	}
	sess, err := m.launcher.Session(context.Background(), p)
	if err != nil {
		m.state.Status = fmt.Sprintf("ssh error: %v", err)
		m.activity.Connect(p, CommandLine(p, m.opts.SSHCommand), err)
		return m, nil
	}
	m.activity.ConnectStart(p, CommandLine(p, m.opts.SSHCommand))
	return m, tea.Exec(sess, func(err error) tea.Msg {
		return sessionDoneMsg{Profile: p, Err: err}
	})
}

func (m model) beginAdd() (tea.Model, tea.Cmd) {
	m.mode = modeAdd
	m.addStep = 0
	m.draft = Draft{}
	m.resetInput()
	return m, textinput.Blink
}

// resetInput prepares the text input for the current add step.
func (m *model) resetInput() {
	pr := addPrompts[m.addStep]
	prompt := pr.Label
	if pr.Default != "" {
		prompt += " [" + pr.Default + "]"
	}
	m.input.Prompt = prompt + ": "
	m.input.Placeholder = pr.Placeholder
	m.input.SetValue("")
	m.input.Focus()
}

func (m model) updateAdd(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		return m.abortAdd(StatusAddCancel), nil
	case tea.KeyEnter:
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(k)
		return m, cmd
	}

	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		value = addPrompts[m.addStep].Default
	}
	setDraftField(&m.draft, m.addStep, value)

	// Reject early, like a line-oriented dialog would, instead of after all six answers.
	switch m.addStep {
	case 0:
		if msg := CheckName(m.state.Profiles, value); msg != "" {
			return m.abortAdd(msg), nil
		}
	case 1:
		if msg := CheckHost(value); msg != "" {
			return m.abortAdd(msg), nil
		}
	}

	m.addStep++
	if m.addStep < len(addPrompts) {
		m.resetInput()
		return m, nil
	}

	before := len(m.state.Profiles)
	m.state = Add(m.state, m.draft, m.store)
	if len(m.state.Profiles) > before {
		if p, ok := m.state.Current(); ok {
			m.activity.Added(p)
		}
	}
	m.mode = modeList
	m.input.Blur()
	return m, nil
}

func (m model) abortAdd(status string) model {
	m.mode = modeList
	m.state.SaveErr = nil
	m.input.Blur()
	m.draft = Draft{}
	m.state.Status = status
	return m
}

func (m model) updateConfirmDelete(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	victim, _ := m.state.Current()
	confirm := k.Type == tea.KeyRunes && IsAffirmative(string(k.Runes))

	next, _ := Dispatch(m.state, Event{Kind: EventDelete, Confirm: confirm}, m.store)
	if len(next.Profiles) < len(m.state.Profiles) {
		m.activity.Deleted(victim)
	}
	m.state = next
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	t := m.theme
	var b strings.Builder

	b.WriteString(t.HeaderLine("WT SSH Manager"))
	b.WriteString("\n")
	b.WriteString(t.HelpText(keys.helpLine()))
	b.WriteString("\n")
	b.WriteString(t.SeparatorLine(m.ruleWidth()))
	b.WriteString("\n")

	switch m.mode {
	case modeAdd:
		b.WriteString(t.HeaderLine("== Add server =="))
		b.WriteString("\n")
		for i := 0; i < m.addStep; i++ {
			b.WriteString(t.DimText(addPrompts[i].Label + ": " + draftField(m.draft, i)))
			b.WriteString("\n")
		}
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(t.DimText("enter: next  esc: cancel"))
		b.WriteString("\n")
		return b.String()

	case modeConfirmDelete:
		if p, ok := m.state.Current(); ok {
			b.WriteString(t.PromptText(fmt.Sprintf("Delete %q? (y/N): ", p.Name)))
			b.WriteString("\n")
		}
		return b.String()
	}

	if m.state.Empty() {
		b.WriteString(t.DimText("(no saved servers, press a to add)"))
		b.WriteString("\n")
	} else {
		start, end := m.visibleRange()
		for i := start; i < end; i++ {
			b.WriteString(t.ListLine(m.state.Profiles[i], i == m.state.Selected))
			b.WriteString("\n")
		}
	}

	b.WriteString(t.SeparatorLine(m.ruleWidth()))
	b.WriteString("\n")
	if m.state.Status != "" {
		b.WriteString(t.StatusText(m.state.Status, m.state.SaveErr))
		b.WriteString("\n")
	}
	return b.String()
}

// visibleRange returns the window of rows to draw so the selection stays on screen.
func (m model) visibleRange() (int, int) {
	n := len(m.state.Profiles)
	rows := n
	if m.height > 0 {
		// header, help, two rules, status
		rows = maxInt(1, m.height-5)
	}
	if n <= rows {
		return 0, n
	}
	start := m.state.Selected - rows/2
	start = maxInt(0, minInt(start, n-rows))
	return start, start + rows
}

func (m model) ruleWidth() int {
	if m.width > 0 {
		return minInt(m.width, 60)
	}
	return 60
}

func draftField(d Draft, i int) string {
	switch i {
	case 0:
		return d.Name
	case 1:
		return d.Host
	case 2:
		return d.User
	case 3:
		return d.Port
	case 4:
		return d.KeyFile
	case 5:
		return d.Note
	}
	return ""
}
