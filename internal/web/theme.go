package web

import "fmt"

// Theme selects the colour scheme rendered into every page.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// ParseTheme validates a configured theme name. Empty means system.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case "", ThemeSystem:
		return ThemeSystem, nil
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("web: unknown theme %q", s)
	}
}
