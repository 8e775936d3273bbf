package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/darling/internal/ui/style"
)

func (c *CLI) newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild [backend...]",
		Short: "Install every manifest package that is missing on this system",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := c.app.Rebuild(cmd.Context(), args)
			if err != nil {
				return err
			}

			type reportView struct {
				Backend   string   `json:"backend"`
				Installed []string `json:"installed"`
				Skipped   []string `json:"skipped"`
			}
			views := make([]reportView, 0, len(reports))
			for _, r := range reports {
				views = append(views, reportView{
					Backend:   r.Backend,
					Installed: append([]string{}, r.Installed...),
					Skipped:   append([]string{}, r.Skipped...),
				})
			}

			p := c.printer(cmd)
			return p.emit(views, func() {
				if len(reports) == 0 {
					p.line("%s", style.Muted.Render("nothing to rebuild"))
					return
				}
				for _, r := range reports {
					p.success("%s: %d installed, %s", r.Backend, len(r.Installed),
						style.Muted.Render(pluralize(len(r.Skipped), "package", "packages")+" already present"))
				}
			})
		},
	}
}
