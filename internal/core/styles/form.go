package styles

import "github.com/charmbracelet/huh"

// FormTheme returns the huh theme matching the active palette.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = t.Focused.Title.Foreground(CurrentPalette.Primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(CurrentPalette.Muted)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(CurrentPalette.Error)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(CurrentPalette.Error)
	t.Blurred.Title = t.Blurred.Title.Foreground(CurrentPalette.Muted)
	return t
}
