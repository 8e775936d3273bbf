package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/darling/internal/ui/style"
)

func (c *CLI) newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descriptors := c.app.Backends()

			type backendView struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				Source      string `json:"source"`
			}
			views := make([]backendView, 0, len(descriptors))
			width := 0
			for _, d := range descriptors {
				views = append(views, backendView(d))
				width = max(width, len(d.Name))
			}

			p := c.printer(cmd)
			return p.emit(views, func() {
				for _, d := range descriptors {
					p.line("%s  %s %s",
						style.Heading.Width(width).Render(d.Name),
						d.Description,
						style.Muted.Render("("+d.Source+")"))
				}
			})
		},
	}
}
