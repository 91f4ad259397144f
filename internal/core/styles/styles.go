// Package styles provides the shared lipgloss styles for CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/marcelomcd/apontador/internal/core/activity"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	TextPrimaryStyle        lipgloss.Style
	TextPrimaryBoldStyle    lipgloss.Style
	TextForegroundStyle     lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style

	// Table header used by uitable listings.
	TableHeaderStyle lipgloss.Style
)

// Severity icons.
const (
	IconInfo    = "•"
	IconSuccess = "✔"
	IconWarning = "●"
	IconError   = "✘"
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TextPrimaryStyle = lipgloss.NewStyle().Foreground(p.Primary)
	TextPrimaryBoldStyle = TextPrimaryStyle.Bold(true)
	TextForegroundStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	TextForegroundBoldStyle = TextForegroundStyle.Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	TextWarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	TableHeaderStyle = lipgloss.NewStyle().Foreground(p.Secondary).Bold(true)
}

// Severity returns the style and icon used to render an activity entry.
func Severity(sev activity.Severity) (lipgloss.Style, string) {
	switch sev {
	case activity.SeveritySuccess:
		return TextSuccessStyle, IconSuccess
	case activity.SeverityError:
		return TextErrorStyle, IconError
	default:
		return TextPrimaryStyle, IconInfo
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
