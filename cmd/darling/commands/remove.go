package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <backend> <package>",
		Short: "Uninstall a package and drop it from the manifest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, name := args[0], args[1]

			tracked, err := c.app.Remove(cmd.Context(), backend, name)
			if err != nil {
				return err
			}

			p := c.printer(cmd)
			view := struct {
				Backend string `json:"backend"`
				Name    string `json:"name"`
				Tracked bool   `json:"tracked"`
			}{backend, name, tracked}
			return p.emit(view, func() {
				if !tracked {
					p.notice("uninstalled %s/%s, it was not in the manifest", backend, name)
					return
				}
				p.success("removed %s/%s", backend, name)
			})
		},
	}
}
