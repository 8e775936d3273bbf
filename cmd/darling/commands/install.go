package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/ui/style"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	var props map[string]string

	cmd := &cobra.Command{
		Use:   "install <backend> <package>",
		Short: "Install a package and record it in the manifest",
		Example: "  darling install pacman ripgrep\n" +
			"  darling install npm typescript -p version=5.5.0",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, name := args[0], args[1]

			entry, err := c.app.Install(cmd.Context(), backend, name, domain.Properties(props))
			if err != nil {
				return err
			}

			p := c.printer(cmd)
			return p.emit(newEntryView(backend, entry), func() {
				detail := entry.Version()
				if extra := formatProperties(entry.Properties); extra != "" {
					detail += " " + extra
				}
				p.success("installed %s/%s %s", backend, entry.Name, style.Muted.Render(detail))
			})
		},
	}
	cmd.Flags().StringToStringVarP(&props, "property", "p", nil, "Package property to record, as key=value (repeatable)")
	return cmd
}
