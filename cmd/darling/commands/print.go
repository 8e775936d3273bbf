package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/ui/output"
	"go.trai.ch/darling/internal/ui/style"
)

// printer writes command results either as styled text or as JSON.
type printer struct {
	out  io.Writer
	json bool
}

func (c *CLI) printer(cmd *cobra.Command) printer {
	out := cmd.OutOrStdout()
	lipgloss.SetColorProfile(output.ColorProfile(out))
	return printer{out: out, json: c.json}
}

// emit prints v as JSON, or calls text to print it for humans.
func (p printer) emit(v any, text func()) error {
	if p.json {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

func (p printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p printer) success(format string, args ...any) {
	p.line(style.Good.Render(style.Check)+" "+format, args...)
}

func (p printer) notice(format string, args ...any) {
	p.line(style.Notice.Render(style.Warning)+" "+format, args...)
}

type entryView struct {
	Backend    string            `json:"backend"`
	Name       string            `json:"name"`
	Properties domain.Properties `json:"properties"`
}

func newEntryView(backend string, e domain.Entry) entryView {
	return entryView{Backend: backend, Name: e.Name, Properties: e.Properties.Clone()}
}

type packageView struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type driftView struct {
	Backend   string        `json:"backend"`
	InSync    bool          `json:"in_sync"`
	Missing   []string      `json:"missing"`
	Untracked []packageView `json:"untracked"`
}

func newDriftView(d domain.Drift) driftView {
	v := driftView{
		Backend:   d.Backend,
		InSync:    d.InSync(),
		Missing:   append([]string{}, d.Missing...),
		Untracked: make([]packageView, 0, len(d.Untracked)),
	}
	for _, pkg := range d.Untracked {
		v.Untracked = append(v.Untracked, packageView(pkg))
	}
	return v
}

// formatProperties renders properties other than the version as key=value pairs.
func formatProperties(props domain.Properties) string {
	var pairs []string
	for _, k := range props.Keys() {
		if k != domain.VersionKey {
			pairs = append(pairs, k+"="+props[k])
		}
	}
	return strings.Join(pairs, " ")
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}
