package manager

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the lipgloss styles used to project State onto the screen.
// Rendering with a disabled theme returns plain strings.
type Theme struct {
	Enabled bool

	Header    lipgloss.Style
	Help      lipgloss.Style
	Selected  lipgloss.Style
	Dim       lipgloss.Style
	Separator lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Prompt    lipgloss.Style
}

// ThemeByName returns the named theme: dark (default), light or none.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "off", "disabled":
		return NoTheme()
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// NoTheme disables all styling.
func NoTheme() Theme {
	return Theme{Enabled: false}
}

// DarkTheme is the default palette for dark terminals.
func DarkTheme() Theme {
	return Theme{
		Enabled:   true,
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Prompt:    lipgloss.NewStyle().Bold(true),
	}
}

// LightTheme is tuned for light backgrounds.
func LightTheme() Theme {
	return Theme{
		Enabled:   true,
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Prompt:    lipgloss.NewStyle().Bold(true),
	}
}

func (t Theme) HeaderLine(s string) string   { return t.apply(t.Header, s) }
func (t Theme) HelpText(s string) string     { return t.apply(t.Help, s) }
func (t Theme) SelectedText(s string) string { return t.apply(t.Selected, s) }
func (t Theme) DimText(s string) string      { return t.apply(t.Dim, s) }
func (t Theme) ErrorText(s string) string    { return t.apply(t.Error, s) }
func (t Theme) SuccessText(s string) string  { return t.apply(t.Success, s) }
func (t Theme) PromptText(s string) string   { return t.apply(t.Prompt, s) }

// SeparatorLine renders a horizontal rule of width w (60 when w <= 0).
func (t Theme) SeparatorLine(w int) string {
	if w <= 0 {
		w = 60
	}
	return t.apply(t.Separator, strings.Repeat("-", w))
}

// SelectedPrefix returns the cursor marker for a list row.
func (t Theme) SelectedPrefix(selected bool) string {
	if selected {
		return t.SelectedText("> ")
	}
	return "  "
}

// ListLine renders one profile row.
func (t Theme) ListLine(p Profile, selected bool) string {
	main := p.Name + " -> " + p.Target() + ":" + strconv.Itoa(p.EffectivePort())
	if selected {
		main = t.SelectedText(main)
	}
	line := t.SelectedPrefix(selected) + main
	if p.Note != "" {
		line += "  " + t.DimText("# "+p.Note)
	}
	return line
}

// StatusText colors a status line by its outcome. A non-nil saveErr marks the line as a
// failure whatever its text says.
func (t Theme) StatusText(s string, saveErr error) string {
	switch {
	case s == "":
		return ""
	case saveErr != nil:
		return t.ErrorText(s)
	case strings.HasPrefix(s, "Added:"), strings.HasPrefix(s, "Deleted:"), strings.HasPrefix(s, "Session ended:"):
		return t.SuccessText(s)
	case s == StatusDeleteCancel, s == StatusAddCancel:
		return t.DimText(s)
	default:
		return t.ErrorText(s)
	}
}

func (t Theme) apply(st lipgloss.Style, s string) string {
	if !t.Enabled || s == "" {
		return s
	}
	return st.Render(s)
}
