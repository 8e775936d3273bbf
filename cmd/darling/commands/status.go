package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/darling/internal/ui/style"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [backend...]",
		Short: "Compare the manifest with what is installed",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drifts, err := c.app.Status(cmd.Context(), args)
			if err != nil {
				return err
			}

			views := make([]driftView, 0, len(drifts))
			for _, d := range drifts {
				views = append(views, newDriftView(d))
			}

			p := c.printer(cmd)
			return p.emit(views, func() {
				if len(drifts) == 0 {
					p.line("%s", style.Muted.Render("manifest "+c.app.ManifestPath()+" tracks no backends"))
					return
				}
				for _, d := range drifts {
					p.line("%s", style.Heading.Render(d.Backend))
					if d.InSync() {
						p.line("  %s in sync", style.Good.Render(style.Check))
						continue
					}
					for _, name := range d.Missing {
						p.line("  %s %s %s", style.Bad.Render(style.Minus), name, style.Muted.Render("not installed"))
					}
					for _, pkg := range d.Untracked {
						p.line("  %s %s %s", style.Notice.Render(style.Plus), pkg.Name, style.Muted.Render("not in manifest"))
					}
				}
			})
		},
	}
}
