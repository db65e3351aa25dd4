package tui

import (
	"slices"

	"github.com/charmbracelet/huh"
)

// namedTheme pairs a --theme value with its constructor.
type namedTheme struct {
	name  string
	build func() *huh.Theme
}

// themeRegistry lists the selectable prompt themes, default first.
var themeRegistry = []namedTheme{
	{"projfind", projfindTheme},
	{"base", huh.ThemeBase},
	{"base16", huh.ThemeBase16},
	{"catppuccin", huh.ThemeCatppuccin},
	{"charm", huh.ThemeCharm},
	{"dracula", huh.ThemeDracula},
}

// ValidThemes holds the accepted theme names in registry order.
var ValidThemes = func() []string {
	names := make([]string, len(themeRegistry))
	for i, t := range themeRegistry {
		names[i] = t.name
	}
	return names
}()

// IsValidTheme reports whether name is a registered theme.
func IsValidTheme(name string) bool {
	return slices.Contains(ValidThemes, name)
}

// GetTheme builds the named theme, or returns nil for an unknown name.
func GetTheme(name string) *huh.Theme {
	i := slices.IndexFunc(themeRegistry, func(t namedTheme) bool { return t.name == name })
	if i < 0 {
		return nil
	}
	return themeRegistry[i].build()
}
