package ui

import (
	"regexp"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): primary text
// - Accent (soft purple #A78BFA, configurable): codes, paths, highlights
// - Muted (gray): secondary info, counts
// - No colored success/error/warning - unicode symbols only

const defaultAccent = "#A78BFA"

var (
	// Accent style for conference codes, file paths, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent)).Bold(true)
)

var (
	accentMu    sync.Mutex
	accentValue = defaultAccent

	hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// SetAccent overrides the accent color from config. Invalid values are
// ignored and the default stays in effect.
func SetAccent(color string) {
	if !hexColorPattern.MatchString(color) {
		return
	}
	accentMu.Lock()
	defer accentMu.Unlock()
	accentValue = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// AccentColor returns the active accent color.
func AccentColor() string {
	accentMu.Lock()
	defer accentMu.Unlock()
	return accentValue
}
