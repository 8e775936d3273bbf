// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Rose   = lipgloss.Color("#E11D74")
	Slate  = lipgloss.Color("#667085")
	White  = lipgloss.Color("#FFFFFF")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Plus    = "+"
	Minus   = "-"
	Arrow   = "→"
	Dot     = "●"
)

// Text styles used by table-like listings.
var (
	Heading = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	Muted   = lipgloss.NewStyle().Foreground(Slate)
	Good    = lipgloss.NewStyle().Foreground(Green)
	Bad     = lipgloss.NewStyle().Foreground(Red)
	Notice  = lipgloss.NewStyle().Foreground(Yellow)
)
