package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette for the projfind theme.
var (
	accentPrimary = lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#818cf8"}
	accentBright  = lipgloss.AdaptiveColor{Light: "#4338ca", Dark: "#a5b4fc"}
	textStrong    = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#f9fafb"}
	textNormal    = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#d1d5db"}
	textMuted     = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	borderFocused = lipgloss.AdaptiveColor{Light: "#6366f1", Dark: "#6366f1"}
	errorRed      = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
)

// currentTheme holds the configured theme; nil means projfindTheme.
var currentTheme *huh.Theme

// SetTheme sets the current theme by name.
// If the name is invalid or empty, the projfind theme is used.
func SetTheme(name string) {
	currentTheme = GetTheme(name)
}

// currentThemeOrDefault returns the configured theme or projfindTheme.
func currentThemeOrDefault() *huh.Theme {
	if currentTheme == nil {
		return projfindTheme()
	}
	return currentTheme
}

func resetTheme() {
	currentTheme = nil
}

// projfindTheme derives the default theme from huh's base theme.
func projfindTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(borderFocused)
	t.Focused.Title = t.Focused.Title.Foreground(accentPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(textMuted)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(accentBright)
	t.Focused.Option = t.Focused.Option.Foreground(textNormal)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(textStrong).Bold(true)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(errorRed)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(errorRed)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(accentBright)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(accentBright)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	t.Help.ShortKey = t.Help.ShortKey.Foreground(textMuted)
	t.Help.ShortDesc = t.Help.ShortDesc.Foreground(textMuted).Faint(true)
	t.Help.ShortSeparator = t.Help.ShortSeparator.Foreground(textMuted)
	t.Help.FullKey = t.Help.FullKey.Foreground(textMuted)
	t.Help.FullDesc = t.Help.FullDesc.Foreground(textMuted).Faint(true)
	t.Help.FullSeparator = t.Help.FullSeparator.Foreground(textMuted)

	return t
}
