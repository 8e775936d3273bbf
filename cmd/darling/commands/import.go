package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/darling/internal/ui/style"
)

func (c *CLI) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "import-installed <backend>",
		Aliases: []string{"load-installed"},
		Short:   "Record every explicitly installed package of a backend in the manifest",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := args[0]

			imported, err := c.app.ImportInstalled(cmd.Context(), backend)
			if err != nil {
				return err
			}

			views := make([]entryView, 0, len(imported))
			for _, e := range imported {
				views = append(views, newEntryView(backend, e))
			}

			p := c.printer(cmd)
			return p.emit(views, func() {
				for _, e := range imported {
					p.line("  %s %s %s", style.Good.Render(style.Plus), e.Name, style.Muted.Render(e.Version()))
				}
				p.success("imported %s into %s", pluralize(len(imported), "package", "packages"), backend)
			})
		},
	}
}
